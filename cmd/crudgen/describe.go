package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler"
	"github.com/syssam/crudgen/compiler/gen"
)

type (
	packageDesc struct {
		Package    string       `yaml:"package"`
		Dir        string       `yaml:"dir"`
		Entities   []entityDesc `yaml:"entities"`
		Advisories []string     `yaml:"advisories,omitempty"`
	}

	entityDesc struct {
		Name        string      `yaml:"name"`
		Label       string      `yaml:"label"`
		Table       string      `yaml:"table"`
		Plural      string      `yaml:"plural"`
		Description string      `yaml:"description,omitempty"`
		PrimaryKey  string      `yaml:"primary_key"`
		DefaultSort string      `yaml:"default_sort"`
		File        string      `yaml:"file"`
		Fields      []fieldDesc `yaml:"fields"`
		Joins       []joinDesc  `yaml:"joins,omitempty"`
		Hooks       []string    `yaml:"hooks,omitempty"`
	}

	fieldDesc struct {
		Name     string `yaml:"name"`
		Column   string `yaml:"column,omitempty"`
		Type     string `yaml:"type"`
		Roles    string `yaml:"roles,omitempty"`
		Models   string `yaml:"models"`
		OnCreate string `yaml:"on_create,omitempty"`
		OnUpdate string `yaml:"on_update,omitempty"`
		Validate string `yaml:"validate,omitempty"`
	}

	joinDesc struct {
		Name   string               `yaml:"name"`
		Kind   crudgen.RelationKind `yaml:"kind"`
		Entity string               `yaml:"entity"`
		Column string               `yaml:"column"`
		Depth  int                  `yaml:"depth"`
		Load   []string             `yaml:"load,omitempty"`
	}
)

// hookActions lists the actions in the order they are described.
var hookActions = []crudgen.Action{
	crudgen.ActionGet,
	crudgen.ActionList,
	crudgen.ActionCreate,
	crudgen.ActionCreateMany,
	crudgen.ActionUpdate,
	crudgen.ActionDelete,
	crudgen.ActionDeleteMany,
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [patterns]",
		Short: "Print the entity graphs of the matching packages as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			graphs, err := compiler.Load(cmd.Context(), a.patterns(args), cfg, a.compilerOptions()...)
			if err != nil {
				return err
			}
			out, err := describe(graphs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// describe renders graphs as a YAML document.
func describe(graphs []*gen.Graph) ([]byte, error) {
	pkgs := make([]packageDesc, 0, len(graphs))
	for _, g := range graphs {
		pd := packageDesc{Package: g.Package.PkgPath, Dir: g.Package.Dir}
		for _, t := range g.Nodes {
			pd.Entities = append(pd.Entities, describeType(t))
		}
		for _, adv := range g.Advisories {
			pd.Advisories = append(pd.Advisories, adv.String())
		}
		pkgs = append(pkgs, pd)
	}
	out, err := yaml.Marshal(pkgs)
	if err != nil {
		return nil, fmt.Errorf("encoding graph: %w", err)
	}
	return out, nil
}

func describeType(t *gen.Type) entityDesc {
	ed := entityDesc{
		Name:        t.Name,
		Label:       t.Label,
		Table:       t.Table,
		Plural:      t.Plural,
		Description: t.Description,
		PrimaryKey:  t.ID.Column,
		DefaultSort: t.DefaultSort,
		File:        t.FileName(),
	}
	for _, f := range t.Fields {
		fd := fieldDesc{
			Name:     f.Name,
			Column:   f.Column,
			Type:     f.Type.String(),
			Roles:    f.Roles.String(),
			Models:   models(f),
			Validate: f.Validate,
		}
		if f.OnCreate != nil {
			fd.OnCreate = f.OnCreate.Src
		}
		if f.OnUpdate != nil {
			fd.OnUpdate = f.OnUpdate.Src
		}
		ed.Fields = append(ed.Fields, fd)
	}
	for _, e := range t.Edges {
		jd := joinDesc{Name: e.Name, Kind: e.Kind, Entity: e.Type.Name, Column: e.Column, Depth: e.Depth}
		if e.One {
			jd.Load = append(jd.Load, crudgen.LoadOne.String())
		}
		if e.All {
			jd.Load = append(jd.Load, crudgen.LoadAll.String())
		}
		ed.Joins = append(ed.Joins, jd)
	}
	for _, act := range hookActions {
		if fn := t.Hooks.Override(act); fn != "" {
			ed.Hooks = append(ed.Hooks, fmt.Sprintf("%s: %s (override)", act, fn))
		}
		for _, p := range []crudgen.Phase{crudgen.Pre, crudgen.Body, crudgen.Post} {
			if fn := t.Hooks.Func(act, p); fn != "" {
				ed.Hooks = append(ed.Hooks, fmt.Sprintf("%s::%s: %s", act, p, fn))
			}
		}
	}
	return ed
}

// models lists the generated models a field appears in.
func models(f *gen.Field) string {
	var s []byte
	for _, m := range []struct {
		in   bool
		name byte
	}{
		{f.InCreate, 'c'},
		{f.InUpdate, 'u'},
		{f.InList, 'l'},
		{f.InOne, 'o'},
	} {
		if m.in {
			s = append(s, m.name)
		} else {
			s = append(s, '-')
		}
	}
	return string(s)
}
