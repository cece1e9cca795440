// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
// 校验标签统一使用 rule:"..."，错误中的字段名优先取 json / form / mapstructure 标签.
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	inst *validator.Validate
	once sync.Once
)

func init() {
	lazyInit()
}

// initValidator 创建独立于 gin 的 validator 实例.
// gin 的引擎按 binding 标签缓存结构体解析结果，与之共用会让 rule 标签因初始化顺序失效.
func initValidator() {
	inst = validator.New()
	inst.SetTagName("rule")
	inst.RegisterTagNameFunc(fieldName)
	_ = inst.RegisterValidation("notblank", notBlank)
}

// fieldName 取 json、form、mapstructure 标签中第一个有效名称作为字段名.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form", "mapstructure"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return fld.Name
}

// notBlank 字符串去除空白后非空；指针为 nil 时视为未提供，交给 omitempty/required 处理.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}

	return strings.TrimSpace(field.String()) != ""
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 是格式化后的验证错误字典，键为字段名（受 RegisterTagNameFunc 影响），值为可读错误信息.
type ValidationErrors map[string]string

// Fields 返回按字母序排列的出错字段名.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for k := range v {
		fields = append(fields, k)
	}

	sort.Strings(fields)

	return fields
}

// Error 实现 error 接口.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, v[f])
	}

	return strings.Join(parts, "; ")
}

// Errors 将 validator 返回的错误解析为 ValidationErrors；非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}

	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
