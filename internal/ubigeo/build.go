package ubigeo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Build：由实体集合构建只读索引
// 背景：先按 (层级, 编码) 稳定排序再链接，使构建结果与数据源记录顺序无关；
// 父子关系由编码前缀推导，显式 ParentCode 只做冗余校验。
// 约束：原子构建。只要存在任一结构性违例即返回 BuildErrors 且不返回索引；不修改输入切片。
func Build(entities []Entity) (*Index, error) {
	sorted := slices.Clone(entities)
	slices.SortStableFunc(sorted, compareEntity)

	idx := &Index{byCode: make(map[string]*node, len(sorted))}
	var errs BuildErrors
	dupNames := map[string][]string{}

	for _, e := range sorted {
		if !ValidCode(e.Code, e.Level) {
			// 绕过 Parse 直接构造的实体
			errs = append(errs, &BuildError{Kind: ErrMalformedCode, Level: e.Level, Code: e.Code, Detail: "code does not match level width"})
			continue
		}
		if prev, ok := idx.byCode[e.Code]; ok {
			if len(dupNames[e.Code]) == 0 {
				dupNames[e.Code] = append(dupNames[e.Code], prev.ent.Name)
			}
			dupNames[e.Code] = append(dupNames[e.Code], e.Name)
			continue
		}
		derived := ParentCode(e.Code)
		if e.ParentCode != "" && e.ParentCode != derived {
			detail := fmt.Sprintf("parent_code %s, code prefix implies %q", e.ParentCode, derived)
			errs = append(errs, &BuildError{Kind: ErrParentMismatch, Level: e.Level, Code: e.Code, Detail: detail})
		}
		n := newNode(e.clone())
		n.ent.ParentCode = derived
		idx.byCode[e.Code] = n
		idx.levels[e.Level] = append(idx.levels[e.Level], n)
		if e.Level == Estado {
			continue
		}
		parent, ok := idx.byCode[derived]
		if !ok {
			errs = append(errs, &BuildError{Kind: ErrOrphanEntity, Level: e.Level, Code: e.Code, Detail: "missing " + e.Level.Parent().String() + " " + derived})
			continue
		}
		n.parent = parent
		parent.children = append(parent.children, n)
	}

	for code, names := range dupNames {
		slices.Sort(names)
		errs = append(errs, &BuildError{Kind: ErrDuplicateCode, Level: LevelOfCode(code), Code: code, Detail: "names " + strings.Join(names, ", ")})
	}
	for _, lv := range []Level{Estado, Municipio} {
		for _, n := range idx.levels[lv] {
			if len(n.children) == 0 {
				errs = append(errs, &BuildError{Kind: ErrEmptySubtree, Level: lv, Code: n.ent.Code, Detail: "no " + lv.Child().String()})
			}
		}
	}
	if len(idx.levels[Estado]) == 0 && len(errs) == 0 {
		errs = append(errs, &BuildError{Kind: ErrEmptySubtree, Level: LevelUnknown, Detail: "dataset has no ESTADO"})
	}
	if len(errs) > 0 {
		slices.SortFunc(errs, func(a, b *BuildError) int {
			if a.Level != b.Level {
				return int(a.Level) - int(b.Level)
			}
			if c := strings.Compare(a.Code, b.Code); c != 0 {
				return c
			}
			return strings.Compare(a.Kind.Error(), b.Kind.Error())
		})
		return nil, errs
	}

	idx.version = contentVersion(sorted)
	idx.builtAt = time.Now()
	return idx, nil
}

// 排序键：层级 → 编码 → 名称 → 显式上级，保证重复编码时的保留项也与输入顺序无关
func compareEntity(a, b Entity) int {
	if a.Level != b.Level {
		return int(a.Level) - int(b.Level)
	}
	if c := strings.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ParentCode, b.ParentCode)
}

// contentVersion：对排序后的实体内容做 SHA-256，取前 16 个十六进制字符
// 约束：只依赖内容，不依赖记录顺序与构建时间；用于缓存键与健康检查
func contentVersion(sorted []Entity) string {
	h := sha256.New()
	for _, e := range sorted {
		fmt.Fprintf(h, "%d|%s|%s|%s\n", e.Level, e.Code, e.Name, strings.Join(e.AltNames, "|"))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
