// Package hcladapter is the HCL implementation of config.Loader. A config
// file holds one optional `group` block:
//
//	group {
//	  numa             = true
//	  workers_per_node = 2
//	  spin             = "500ms"
//	}
//
// Attribute expressions are evaluated with `num_cpus` in scope, so densities
// can be derived from the machine (`workers = num_cpus / 2`).
package hcladapter

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/ethe/numagroup/internal/config"
	"github.com/ethe/numagroup/internal/ctxlog"
)

// Loader parses HCL group configuration files.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "group"}},
}

var groupSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "numa"},
		{Name: "workers_per_node"},
		{Name: "workers"},
		{Name: "no_affinity"},
		{Name: "spin"},
	},
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return config.Model{}, fmt.Errorf("failed to parse %s: %w", path, diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return config.Model{}, fmt.Errorf("failed to decode %s: %w", path, diags)
	}

	var model config.Model
	for _, block := range content.Blocks {
		m, err := l.decodeGroupBlock(block)
		if err != nil {
			return config.Model{}, fmt.Errorf("%s: %w", path, err)
		}
		model = model.Merge(m)
	}

	if err := model.Validate(); err != nil {
		return config.Model{}, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("HCL loading complete.", "path", path)
	return model, nil
}

// evalContext exposes the machine facts config expressions may refer to.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"num_cpus": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
	}
}

func (l *Loader) decodeGroupBlock(block *hcl.Block) (config.Model, error) {
	content, diags := block.Body.Content(groupSchema)
	if diags.HasErrors() {
		return config.Model{}, fmt.Errorf("invalid group block: %w", diags)
	}

	evalCtx := evalContext()
	var model config.Model

	if attr, ok := content.Attributes["numa"]; ok {
		v, err := decodeBool(attr, evalCtx)
		if err != nil {
			return config.Model{}, err
		}
		model.Numa = &v
	}
	if attr, ok := content.Attributes["no_affinity"]; ok {
		v, err := decodeBool(attr, evalCtx)
		if err != nil {
			return config.Model{}, err
		}
		model.NoAffinity = &v
	}
	if attr, ok := content.Attributes["workers_per_node"]; ok {
		v, err := decodeInt(attr, evalCtx)
		if err != nil {
			return config.Model{}, err
		}
		model.WorkersPerNode = &v
	}
	if attr, ok := content.Attributes["workers"]; ok {
		v, err := decodeInt(attr, evalCtx)
		if err != nil {
			return config.Model{}, err
		}
		model.Workers = &v
	}
	if attr, ok := content.Attributes["spin"]; ok {
		v, err := decodeDuration(attr, evalCtx)
		if err != nil {
			return config.Model{}, err
		}
		model.Spin = &v
	}
	return model, nil
}

func decodeBool(attr *hcl.Attribute, evalCtx *hcl.EvalContext) (bool, error) {
	value, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return false, attrError(attr, diags)
	}
	var out bool
	if err := gocty.FromCtyValue(value, &out); err != nil {
		return false, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	return out, nil
}

func decodeInt(attr *hcl.Attribute, evalCtx *hcl.EvalContext) (int, error) {
	value, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, attrError(attr, diags)
	}
	var out int
	if err := gocty.FromCtyValue(value, &out); err != nil {
		return 0, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	return out, nil
}

func decodeDuration(attr *hcl.Attribute, evalCtx *hcl.EvalContext) (time.Duration, error) {
	value, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, attrError(attr, diags)
	}
	var raw string
	if err := gocty.FromCtyValue(value, &raw); err != nil {
		return 0, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	return d, nil
}

func attrError(attr *hcl.Attribute, diags hcl.Diagnostics) error {
	return fmt.Errorf("attribute %q: %w", attr.Name, diags)
}
