package pageobject

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/devicelab-dev/pagekit/pkg/locator"
	"gopkg.in/yaml.v3"
)

// PageFile is the YAML layout of page definitions:
//
//	pages:
//	  - name: Login
//	    locator: "#login"
//	    url: ${BASE_URL}/login
//	    elements:
//	      - key: form
//	        locator: {default: ".form", mobile: ".m-form"}
//	        elements:
//	          - {key: user, locator: "#user", wait: visible}
//	      - {key: spinner, locator: ".spinner", wait: hidden}
type PageFile struct {
	Pages []DeclYAML `yaml:"pages"`
}

// DeclYAML is one declaration. Entries with elements, or with group set,
// are groups.
type DeclYAML struct {
	Key      string          `yaml:"key"`
	Name     string          `yaml:"name"`
	Locator  locator.Locator `yaml:"locator"`
	Wait     string          `yaml:"wait"`
	Parent   string          `yaml:"parent"` // "none" disables owner inference
	URL      string          `yaml:"url"`
	Group    bool            `yaml:"group"`
	Elements []DeclYAML      `yaml:"elements"`
}

// LoadBlueprints decodes page definitions. ${VAR} references are expanded
// from the environment before decoding.
func LoadBlueprints(r io.Reader) ([]*Blueprint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page definitions: %w", err)
	}

	var file PageFile
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse page definitions: %w", err)
	}

	pages := make([]*Blueprint, 0, len(file.Pages))
	seen := make(map[string]bool)
	for i, p := range file.Pages {
		bp, err := p.blueprint(kindPage)
		if err != nil {
			return nil, fmt.Errorf("pages[%d]: %w", i, err)
		}
		if seen[bp.Key()] {
			return nil, ErrDeclaration.WithMessagef("duplicate page %q", bp.Key())
		}
		seen[bp.Key()] = true
		if err := bp.validate(); err != nil {
			return nil, err
		}
		pages = append(pages, bp)
	}
	return pages, nil
}

// LoadBlueprintsFile reads page definitions from a file.
func LoadBlueprintsFile(path string) ([]*Blueprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page definitions: %w", err)
	}
	defer f.Close()
	return LoadBlueprints(f)
}

func (y DeclYAML) blueprint(kind objectKind) (*Blueprint, error) {
	wait, err := ParseWaitPolicy(y.Wait)
	if err != nil {
		return nil, err
	}

	d := Decl{
		Key:     y.Key,
		Name:    y.Name,
		Locator: y.Locator,
		Wait:    wait,
		URL:     y.URL,
	}
	switch y.Parent {
	case "":
	case "none", "false":
		d.NoParent = true
	default:
		return nil, ErrDeclaration.WithMessagef("unknown parent %q", y.Parent)
	}

	if kind == kindPage {
		children, err := childBlueprints(y.Elements)
		if err != nil {
			return nil, err
		}
		return PageBlueprint(d, children...), nil
	}
	if y.URL != "" {
		return nil, ErrDeclaration.WithMessagef("url is only valid on pages, found on %q", d.Locator.String())
	}
	if len(y.Elements) > 0 || y.Group {
		children, err := childBlueprints(y.Elements)
		if err != nil {
			return nil, err
		}
		return GroupBlueprint(d, children...), nil
	}
	return ElementBlueprint(d), nil
}

func childBlueprints(decls []DeclYAML) ([]*Blueprint, error) {
	children := make([]*Blueprint, 0, len(decls))
	for i, c := range decls {
		bp, err := c.blueprint(kindElement)
		if err != nil {
			return nil, fmt.Errorf("elements[%d]: %w", i, err)
		}
		children = append(children, bp)
	}
	return children, nil
}
