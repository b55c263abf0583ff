package ubigeo

import (
	"strings"
	"time"
)

// node：索引内部节点；children 按编码升序，parent 为非拥有的回指
type node struct {
	ent      Entity
	key      string
	altKeys  []string
	parent   *node
	children []*node
}

func newNode(e Entity) *node {
	n := &node{ent: e, key: Normalize(e.Name)}
	for _, a := range e.AltNames {
		n.altKeys = append(n.altKeys, Normalize(a))
	}
	return n
}

// 名称或任一别名的归一化键满足 match
func (n *node) anyKey(match func(string) bool) bool {
	if match(n.key) {
		return true
	}
	for _, k := range n.altKeys {
		if match(k) {
			return true
		}
	}
	return false
}

// Index：构建完成的只读行政区划索引
// 背景：只能由 Build 成功返回，因此任何可见的 *Index 都处于 Ready 状态；构建后不再写入，
// 多个 goroutine 可无锁并发查询。
// 约束：所有返回的 Entity 均为副本；编码唯一映射到节点，层级列表按编码升序。
type Index struct {
	byCode  map[string]*node
	levels  [Parroquia + 1][]*node
	version string
	builtAt time.Time
}

// Stats：各层级实体数量
type Stats struct {
	Estados    int `json:"estados"`
	Municipios int `json:"municipios"`
	Parroquias int `json:"parroquias"`
}

// Version：数据内容指纹（与记录顺序无关）
func (x *Index) Version() string { return x.version }

// BuiltAt：索引构建完成时间
func (x *Index) BuiltAt() time.Time { return x.builtAt }

// Len：实体总数
func (x *Index) Len() int { return len(x.byCode) }

func (x *Index) Stats() Stats {
	return Stats{
		Estados:    len(x.levels[Estado]),
		Municipios: len(x.levels[Municipio]),
		Parroquias: len(x.levels[Parroquia]),
	}
}

// lookup：校验编码格式后定位节点
func (x *Index) lookup(code string) (*node, error) {
	lv := LevelOfCode(code)
	if lv == LevelUnknown {
		return nil, &InvalidQueryError{Param: "code", Value: code, Reason: "expected 2, 4 or 6 digits"}
	}
	n, ok := x.byCode[code]
	if !ok {
		return nil, &NotFoundError{Code: code}
	}
	return n, nil
}

// GetByCode：按编码精确查找实体
// 异常：位数/字符不合法返回 InvalidQueryError；格式合法但不存在返回 NotFoundError
func (x *Index) GetByCode(code string) (Entity, error) {
	n, err := x.lookup(code)
	if err != nil {
		return Entity{}, err
	}
	return n.ent.clone(), nil
}

// ChildrenOf：直接下级，按编码升序
// 约束：Parroquia 为叶子，返回空切片而不是错误；未知编码返回 NotFoundError
func (x *Index) ChildrenOf(code string) ([]Entity, error) {
	n, err := x.lookup(code)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c.ent.clone())
	}
	return out, nil
}

// AncestorsOf：从 Estado 到直接上级的链（Estado 自身返回空切片）
func (x *Index) AncestorsOf(code string) ([]Entity, error) {
	n, err := x.lookup(code)
	if err != nil {
		return nil, err
	}
	var chain []*node
	for p := n.parent; p != nil; p = p.parent {
		chain = append(chain, p)
	}
	out := make([]Entity, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].ent.clone())
	}
	return out, nil
}

// FullPath：编码 → {estado, municipio?, parroquia?}
func (x *Index) FullPath(code string) (Path, error) {
	n, err := x.lookup(code)
	if err != nil {
		return Path{}, err
	}
	return pathOf(n), nil
}

func pathOf(n *node) Path {
	var p Path
	for cur := n; cur != nil; cur = cur.parent {
		e := cur.ent.clone()
		switch e.Level {
		case Estado:
			p.Estado = e
		case Municipio:
			p.Municipio = &e
		case Parroquia:
			p.Parroquia = &e
		}
	}
	return p
}

// SearchByName：名称子串检索（大小写与重音不敏感，匹配名称及别名）
// 背景：结果按 (层级, 编码) 升序，重复调用返回完全相同的序列；同名实体以编码区分，调用方可再取 FullPath。
// 约束：levels 为空表示全部层级；归一化后为空的 query 返回所选层级的全部实体。
// 异常：levels 中含未知层级返回 InvalidQueryError。
func (x *Index) SearchByName(query string, levels ...Level) ([]Entity, error) {
	want, err := levelFilter(levels)
	if err != nil {
		return nil, err
	}
	q := Normalize(query)
	out := []Entity{}
	for _, lv := range Levels {
		if !want[lv] {
			continue
		}
		for _, n := range x.levels[lv] {
			if q == "" || n.anyKey(func(k string) bool { return strings.Contains(k, q) }) {
				out = append(out, n.ent.clone())
			}
		}
	}
	return out, nil
}

func levelFilter(levels []Level) (map[Level]bool, error) {
	want := make(map[Level]bool, len(Levels))
	if len(levels) == 0 {
		for _, lv := range Levels {
			want[lv] = true
		}
		return want, nil
	}
	for _, lv := range levels {
		if !lv.valid() {
			return nil, &InvalidQueryError{Param: "level", Value: lv.String(), Reason: "expected ESTADO, MUNICIPIO or PARROQUIA"}
		}
		want[lv] = true
	}
	return want, nil
}

// ResolveNames：按名称逐级定位（名称或别名的归一化全等匹配）
// 背景：对应按 /estado/municipio/parroquia 名称取路径的用法；同级同名时取编码最小者。
// 约束：estado 必填；parroquia 非空时 municipio 也必须非空；空的尾部参数表示只解析到上一级。
func (x *Index) ResolveNames(estado, municipio, parroquia string) (Path, error) {
	names := []string{estado, municipio, parroquia}
	if Normalize(estado) == "" {
		return Path{}, &InvalidQueryError{Param: "estado", Value: estado, Reason: "name required"}
	}
	if Normalize(municipio) == "" && Normalize(parroquia) != "" {
		return Path{}, &InvalidQueryError{Param: "municipio", Value: municipio, Reason: "name required when parroquia is given"}
	}
	cands := x.levels[Estado]
	var cur *node
	for depth, raw := range names {
		key := Normalize(raw)
		if key == "" {
			break
		}
		cur = findByKey(cands, key)
		if cur == nil {
			return Path{}, &NotFoundError{Name: strings.Join(names[:depth+1], "/")}
		}
		cands = cur.children
	}
	return pathOf(cur), nil
}

func findByKey(ns []*node, key string) *node {
	for _, n := range ns {
		if n.anyKey(func(k string) bool { return k == key }) {
			return n
		}
	}
	return nil
}

// Level：某层级的全部实体（编码升序）
func (x *Index) Level(lv Level) []Entity {
	if !lv.valid() {
		return []Entity{}
	}
	out := make([]Entity, 0, len(x.levels[lv]))
	for _, n := range x.levels[lv] {
		out = append(out, n.ent.clone())
	}
	return out
}

// Tree：完整嵌套树，用于全量导出
func (x *Index) Tree() []Node {
	return treeOf(x.levels[Estado])
}

func treeOf(ns []*node) []Node {
	out := make([]Node, 0, len(ns))
	for _, n := range ns {
		nd := Node{Entity: n.ent.clone()}
		if len(n.children) > 0 {
			nd.Children = treeOf(n.children)
		}
		out = append(out, nd)
	}
	return out
}
