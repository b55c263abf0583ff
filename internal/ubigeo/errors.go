package ubigeo

import (
	"errors"
	"fmt"
	"strings"
)

// 错误种类哨兵：调用方使用 errors.Is 判断种类，使用 errors.As 取出结构化详情
var (
	// 解析期（ParseError）
	ErrMalformedCode = errors.New("malformed code")
	ErrUnknownLevel  = errors.New("unknown level")
	ErrEmptyName     = errors.New("empty name")

	// 构建期（BuildError）
	ErrOrphanEntity   = errors.New("orphan entity")
	ErrDuplicateCode  = errors.New("duplicate code")
	ErrEmptySubtree   = errors.New("empty subtree")
	ErrParentMismatch = errors.New("parent code mismatch")

	// 查询期
	ErrNotFound     = errors.New("not found")
	ErrInvalidQuery = errors.New("invalid query")
)

// ParseError：单条原始记录的格式缺陷
// 约束：Index 为记录在输入序列中的下标（从 0 开始）；同一记录可产生多条 ParseError
type ParseError struct {
	Index int
	Field string
	Value string
	Kind  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: %s: %s=%q", e.Index, e.Kind, e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// ParseErrors：一次解析收集到的全部缺陷，按记录下标有序
type ParseErrors []*ParseError

func (es ParseErrors) Error() string {
	return joinErrors(fmt.Sprintf("parse: %d invalid record field(s)", len(es)), len(es), func(i int) string { return es[i].Error() })
}

func (es ParseErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// BuildError：结构性违例（孤儿、重复编码、空子树、父编码不一致）
type BuildError struct {
	Kind   error
	Level  Level
	Code   string
	Detail string
}

func (e *BuildError) Error() string {
	s := fmt.Sprintf("%s: %s %s", e.Kind, e.Level, e.Code)
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

func (e *BuildError) Unwrap() error { return e.Kind }

// BuildErrors：一次构建收集到的全部结构性违例，按 (层级, 编码, 种类) 排序
type BuildErrors []*BuildError

func (es BuildErrors) Error() string {
	return joinErrors(fmt.Sprintf("build: %d structural violation(s)", len(es)), len(es), func(i int) string { return es[i].Error() })
}

func (es BuildErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// NotFoundError：编码格式合法但索引中不存在；按名称解析失败时 Name 为已解析到的名称路径
type NotFoundError struct {
	Code string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("name %q not found", e.Name)
	}
	return fmt.Sprintf("code %q not found", e.Code)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidQueryError：查询参数不合法（编码位数错误、非数字、未知层级）
type InvalidQueryError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// Kind：返回错误种类的稳定短名，供传输层写入响应体与指标标签
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrMalformedCode), errors.Is(err, ErrUnknownLevel), errors.Is(err, ErrEmptyName):
		return "parse_error"
	case errors.Is(err, ErrOrphanEntity), errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrEmptySubtree), errors.Is(err, ErrParentMismatch):
		return "build_error"
	}
	return "internal"
}

// 约束：最多展开前 10 条，其余只给出数量
func joinErrors(head string, n int, item func(int) string) string {
	const maxShown = 10
	var b strings.Builder
	b.WriteString(head)
	for i := 0; i < n && i < maxShown; i++ {
		b.WriteString("\n  ")
		b.WriteString(item(i))
	}
	if n > maxShown {
		fmt.Fprintf(&b, "\n  ... and %d more", n-maxShown)
	}
	return b.String()
}
