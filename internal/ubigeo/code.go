// 包 ubigeo：委内瑞拉行政区划（Estado → Municipio → Parroquia）的编码规则、只读索引与查询
package ubigeo

import (
	"fmt"
	"strings"
)

// Level：行政层级，数值顺序即排序顺序（Estado < Municipio < Parroquia）
type Level int

const (
	LevelUnknown Level = iota
	Estado
	Municipio
	Parroquia
)

// 每级编码的固定位数；下级编码 = 上级编码 + 两位本级序号
const (
	EstadoWidth    = 2
	MunicipioWidth = 4
	ParroquiaWidth = 6
)

// Levels：按层级顺序列出全部有效层级，便于遍历
var Levels = []Level{Estado, Municipio, Parroquia}

func (l Level) String() string {
	switch l {
	case Estado:
		return "ESTADO"
	case Municipio:
		return "MUNICIPIO"
	case Parroquia:
		return "PARROQUIA"
	}
	return "UNKNOWN"
}

// Width：该层级编码的位数；未知层级返回 0
func (l Level) Width() int {
	switch l {
	case Estado:
		return EstadoWidth
	case Municipio:
		return MunicipioWidth
	case Parroquia:
		return ParroquiaWidth
	}
	return 0
}

// Parent：上一层级；Estado 与未知层级返回 LevelUnknown
func (l Level) Parent() Level {
	switch l {
	case Municipio:
		return Estado
	case Parroquia:
		return Municipio
	}
	return LevelUnknown
}

// Child：下一层级；Parroquia 为叶子，返回 LevelUnknown
func (l Level) Child() Level {
	switch l {
	case Estado:
		return Municipio
	case Municipio:
		return Parroquia
	}
	return LevelUnknown
}

func (l Level) valid() bool { return l >= Estado && l <= Parroquia }

// MarshalText：对外序列化为大写层级标签
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText：用于读回缓存中的实体；数据集记录的层级标签不经此路径，由 Parse 校验
func (l *Level) UnmarshalText(b []byte) error {
	lv, ok := ParseLevel(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, string(b))
	}
	*l = lv
	return nil
}

// ParseLevel：解析层级标签（大小写不敏感），兼容英文别名 state/municipality/parish
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ESTADO", "STATE":
		return Estado, true
	case "MUNICIPIO", "MUNICIPALITY":
		return Municipio, true
	case "PARROQUIA", "PARISH":
		return Parroquia, true
	}
	return LevelUnknown, false
}

// LevelOfCode：按编码位数推断层级；位数不合法或含非数字返回 LevelUnknown
func LevelOfCode(code string) Level {
	if !isDigits(code) {
		return LevelUnknown
	}
	switch len(code) {
	case EstadoWidth:
		return Estado
	case MunicipioWidth:
		return Municipio
	case ParroquiaWidth:
		return Parroquia
	}
	return LevelUnknown
}

// ParentCode：由编码前缀推导上级编码；Estado 或非法编码返回空串
func ParentCode(code string) string {
	lv := LevelOfCode(code)
	if lv == LevelUnknown || lv == Estado {
		return ""
	}
	return code[:lv.Parent().Width()]
}

// ValidCode：编码位数与层级一致且全部为 ASCII 数字
func ValidCode(code string, l Level) bool {
	return l.valid() && len(code) == l.Width() && isDigits(code)
}

// 约束：只接受 ASCII 0-9，全角或其他 Unicode 数字一律视为非法
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
