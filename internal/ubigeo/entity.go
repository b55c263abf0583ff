package ubigeo

import "slices"

// RawRecord：数据源投影出的原始记录，即加载器的输入契约
// 约束：Level 保留原始标签文本，由 Parse 统一校验；ParentCode 为空表示未显式给出上级
type RawRecord struct {
	Level      string   `json:"level" yaml:"level"`
	Code       string   `json:"code" yaml:"code"`
	Name       string   `json:"name" yaml:"name"`
	ParentCode string   `json:"parent_code,omitempty" yaml:"parent_code,omitempty"`
	AltNames   []string `json:"alt_names,omitempty" yaml:"alt_names,omitempty"`
}

// Entity：校验后的行政区实体（对外只读值）
type Entity struct {
	Level      Level    `json:"level"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	ParentCode string   `json:"parent_code,omitempty"`
	AltNames   []string `json:"alt_names,omitempty"`
}

// clone：对外返回副本，调用方修改切片不会影响索引内部状态
func (e Entity) clone() Entity {
	e.AltNames = slices.Clone(e.AltNames)
	return e
}

// Path：由编码还原出的完整命名路径；Municipio/Parroquia 视层级可为空
type Path struct {
	Estado    Entity  `json:"estado"`
	Municipio *Entity `json:"municipio,omitempty"`
	Parroquia *Entity `json:"parroquia,omitempty"`
}

// Leaf：路径中最深一级实体
func (p Path) Leaf() Entity {
	if p.Parroquia != nil {
		return *p.Parroquia
	}
	if p.Municipio != nil {
		return *p.Municipio
	}
	return p.Estado
}

// Code：由各级的本级序号重新拼出完整编码
// 约束：只取每级编码的最后两位拼接在 Estado 编码之后，不直接返回最深实体的编码
func (p Path) Code() string {
	c := p.Estado.Code
	if p.Municipio != nil && len(p.Municipio.Code) == MunicipioWidth {
		c += p.Municipio.Code[EstadoWidth:]
	}
	if p.Parroquia != nil && len(p.Parroquia.Code) == ParroquiaWidth {
		c += p.Parroquia.Code[MunicipioWidth:]
	}
	return c
}

// Names：从 Estado 到最深一级的名称列表
func (p Path) Names() []string {
	out := []string{p.Estado.Name}
	if p.Municipio != nil {
		out = append(out, p.Municipio.Name)
	}
	if p.Parroquia != nil {
		out = append(out, p.Parroquia.Name)
	}
	return out
}

// Node：/v1/all 使用的嵌套树节点
type Node struct {
	Entity
	Children []Node `json:"children,omitempty"`
}
