// Package lpfile 读取 toml/yaml/json 格式的线性规划文档并渲染求解报告。
package lpfile

import (
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/wyfcoding/simplex/simplex"
	"github.com/wyfcoding/simplex/xerrors"
)

var (
	// ErrBadBound 上界引用了不存在的变量。
	ErrBadBound = xerrors.New(xerrors.ErrInvalidArg, 400201, "invalid bound", "bound must reference an existing variable", nil)
	// ErrBadVariables 变量名个数与目标函数维度不一致或存在重名。
	ErrBadVariables = xerrors.New(xerrors.ErrInvalidArg, 400202, "invalid variable names", "names must be unique and match len(objective)", nil)
	// ErrDecode 文档无法解析。
	ErrDecode = xerrors.New(xerrors.ErrInvalidArg, 400203, "malformed document", "", nil)
)

// Bound 单个变量的上界。Name 非空时按变量名匹配，否则使用 0 起始的下标 Var。
type Bound struct {
	Var   int     `json:"var"            mapstructure:"var"`
	Name  string  `json:"name,omitempty" mapstructure:"name"`
	Upper float64 `json:"upper"          mapstructure:"upper"`
}

// Document 线性规划文档。
type Document struct {
	Name        string      `json:"name,omitempty"      mapstructure:"name"`
	Sense       string      `json:"sense,omitempty"     mapstructure:"sense"`
	Objective   []float64   `json:"objective"           mapstructure:"objective"`
	Constraints [][]float64 `json:"constraints"         mapstructure:"constraints"`
	RHS         []float64   `json:"rhs"                 mapstructure:"rhs"`
	Relations   []string    `json:"relations,omitempty" mapstructure:"relations"`
	Bounds      []Bound     `json:"bounds,omitempty"    mapstructure:"bounds"`
	Variables   []string    `json:"variables,omitempty" mapstructure:"variables"`
}

// Load 读取文档文件，格式按扩展名推断（.toml、.yaml/.yml、.json），缺省为 toml。
func Load(path string) (*Document, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(Format(path))
	if err := v.ReadInConfig(); err != nil {
		return nil, ErrDecode.Detailf("read %s: %v", path, err)
	}
	return unmarshal(v)
}

// Decode 从流中读取指定格式（toml、yaml、json）的文档。
func Decode(r io.Reader, format string) (*Document, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, ErrDecode.Detailf("%s: %v", format, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Document, error) {
	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, ErrDecode.Detailf("%v", err)
	}
	return &doc, nil
}

// Format 根据文件扩展名返回文档格式。
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

// VariableName 返回第 j 个变量的显示名，未命名时为 x1、x2 ...
func (d *Document) VariableName(j int) string {
	if j < len(d.Variables) && d.Variables[j] != "" {
		return d.Variables[j]
	}
	return "x" + strconv.Itoa(j+1)
}

// Problem 将文档转换为已校验的 simplex.Problem。
func (d *Document) Problem() (*simplex.Problem, error) {
	sense, err := simplex.ParseSense(d.Sense)
	if err != nil {
		return nil, err
	}

	p := &simplex.Problem{
		Sense:       sense,
		Objective:   d.Objective,
		Constraints: d.Constraints,
		RHS:         d.RHS,
	}

	if len(d.Relations) > 0 {
		p.Relations = make([]simplex.Relation, len(d.Relations))
		for i, s := range d.Relations {
			rel, err := simplex.ParseRelation(s)
			if err != nil {
				return nil, xerrors.ErrUnknownRelation.Detailf("row %d relation %q", i, s).WithContext("row", i)
			}
			p.Relations[i] = rel
		}
	}

	n := len(d.Objective)
	index, err := d.variableIndex(n)
	if err != nil {
		return nil, err
	}

	if len(d.Bounds) > 0 {
		p.UpperBounds = make([]float64, n)
		for j := range p.UpperBounds {
			p.UpperBounds[j] = math.Inf(1)
		}
		for k, b := range d.Bounds {
			j := b.Var
			if b.Name != "" {
				var ok bool
				if j, ok = index[b.Name]; !ok {
					return nil, ErrBadBound.Detailf("bound %d references unknown variable %q", k, b.Name)
				}
			}
			if j < 0 || j >= n {
				return nil, ErrBadBound.Detailf("bound %d references variable %d of %d", k, j, n)
			}
			// 同一变量出现多次时取最紧的上界
			p.UpperBounds[j] = math.Min(p.UpperBounds[j], b.Upper)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Document) variableIndex(n int) (map[string]int, error) {
	if len(d.Variables) == 0 {
		return nil, nil
	}
	if len(d.Variables) != n {
		return nil, ErrBadVariables.Detailf("%d names for %d variables", len(d.Variables), n)
	}
	index := make(map[string]int, n)
	for j, name := range d.Variables {
		if _, dup := index[name]; dup {
			return nil, ErrBadVariables.Detailf("duplicate variable %q", name)
		}
		index[name] = j
	}
	return index, nil
}
