package ubigeo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize：名称归一化（去重音、小写、压缩空白）
// 背景：与 unidecode(name.lower()) 的比较方式对齐，"Mérida"、"MERIDA"、"merida" 归为同一键；ñ 折叠为 n。
// 约束：只去除组合附加符号（Mn），不做音译；标点保留，仅首尾及连续空白被规整。
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
