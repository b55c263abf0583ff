package ubigeo

import "strings"

// Parse：原始记录 → 类型化实体
// 背景：逐条校验层级标签、编码位数与数字格式、上级编码格式与名称；不在首个错误处中断，
// 调用方一次拿到完整的缺陷清单（ParseErrors）。
// 约束：不修改输入；名称与别名只做首尾空白裁剪，原文大小写与重音保留。
func Parse(records []RawRecord) ([]Entity, error) {
	var errs ParseErrors
	out := make([]Entity, 0, len(records))
	for i, r := range records {
		before := len(errs)
		lv, ok := ParseLevel(r.Level)
		if !ok {
			errs = append(errs, &ParseError{Index: i, Field: "level", Value: r.Level, Kind: ErrUnknownLevel})
		}
		// 层级未知时无法确定期望位数，只要求编码落在任一合法位数上
		code := strings.TrimSpace(r.Code)
		if !codeShapeOK(code, lv, ok) {
			errs = append(errs, &ParseError{Index: i, Field: "code", Value: r.Code, Kind: ErrMalformedCode})
		}
		// Estado 显式给出上级编码属于结构不一致，交给 Build 报 ParentMismatch
		parent := strings.TrimSpace(r.ParentCode)
		if parent != "" && !(ok && lv == Estado) && !codeShapeOK(parent, lv.Parent(), ok) {
			errs = append(errs, &ParseError{Index: i, Field: "parent_code", Value: r.ParentCode, Kind: ErrMalformedCode})
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			errs = append(errs, &ParseError{Index: i, Field: "name", Value: r.Name, Kind: ErrEmptyName})
		}
		if len(errs) > before {
			continue
		}
		out = append(out, Entity{
			Level:      lv,
			Code:       code,
			Name:       name,
			ParentCode: parent,
			AltNames:   cleanAltNames(r.AltNames),
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func codeShapeOK(code string, lv Level, levelKnown bool) bool {
	if !levelKnown {
		return LevelOfCode(code) != LevelUnknown
	}
	return ValidCode(code, lv)
}

// 去除空白别名；不去重、不排序，保持数据源给出的顺序
func cleanAltNames(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
