package rule_test

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yeisme/ebookshelf/pkg/rule"
)

// bookForm 用于测试 ValidateStruct 与字段名解析.
type bookForm struct {
	Title      string  `json:"title"       rule:"notblank"`
	Author     string  `form:"author"      rule:"required"`
	PriceCents *int64  `json:"price_cents" rule:"omitempty,min=0"`
	Language   *string `json:"language"    rule:"omitempty,notblank"`
}

func ptr[T any](v T) *T { return &v }

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// credentials 仅在本测试中使用，保证 gin 先于 rule 解析该类型.
type credentials struct {
	Email    string `json:"email"    rule:"required"`
	Password string `json:"password" rule:"required"`
}

// TestValidateStructAfterGinBinding 测试 gin 先校验同一类型后 rule 标签仍然生效.
func TestValidateStructAfterGinBinding(t *testing.T) {
	var req credentials

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		t.Fatalf("gin binding should ignore rule tags, got %v", err)
	}

	err := rule.ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error after gin binding, got nil")
	}

	fields := rule.Errors(err).Fields()
	if len(fields) != 2 || fields[0] != "email" || fields[1] != "password" {
		t.Errorf("Expected [email password], got %v", fields)
	}

	if rule.Engine() == binding.Validator.Engine() {
		t.Error("rule must not share gin's validator engine")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	// 有效结构体
	valid := bookForm{Title: "Dune", Author: "Herbert", PriceCents: ptr(int64(0))}
	if err := rule.ValidateStruct(valid); err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 空白标题
	if err := rule.ValidateStruct(bookForm{Title: "   ", Author: "Herbert"}); err == nil {
		t.Error("Expected error for blank title, got nil")
	}

	// 负价格
	if err := rule.ValidateStruct(bookForm{Title: "Dune", Author: "Herbert", PriceCents: ptr(int64(-1))}); err == nil {
		t.Error("Expected error for negative price, got nil")
	}

	// 提供了但为空白的语言
	if err := rule.ValidateStruct(bookForm{Title: "Dune", Author: "Herbert", Language: ptr(" ")}); err == nil {
		t.Error("Expected error for blank language, got nil")
	}
}

// TestErrorsFieldNames 测试错误字段名取自 json / form 标签.
func TestErrorsFieldNames(t *testing.T) {
	err := rule.ValidateStruct(bookForm{PriceCents: ptr(int64(-5))})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	verrs := rule.Errors(err)

	want := []string{"author", "price_cents", "title"}

	got := verrs.Fields()
	if len(got) != len(want) {
		t.Fatalf("Expected fields %v, got %v", want, got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected field %q at %d, got %q", want[i], i, got[i])
		}
	}

	if verrs.Error() == "" {
		t.Error("Expected non-empty error message")
	}
}

// TestErrorsNonValidation 非校验错误返回 nil.
func TestErrorsNonValidation(t *testing.T) {
	if got := rule.Errors(nil); got != nil {
		t.Errorf("Expected nil for nil error, got %v", got)
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 email
	if err := rule.ValidateVar("admin@example.com", "required,email"); err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	// 无效 email
	if err := rule.ValidateVar("invalid-email", "required,email"); err == nil {
		t.Error("Expected error for invalid email, got nil")
	}

	// 页大小上限
	if err := rule.ValidateVar(51, "min=1,max=50"); err == nil {
		t.Error("Expected error for page size over bound, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：检查文件名是否以 .pdf 结尾
	err := rule.RegisterValidation("pdf_name", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str) > 4 && str[len(str)-4:] == ".pdf"
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	if err = rule.ValidateVar("book.pdf", "pdf_name"); err != nil {
		t.Errorf("Expected no error for pdf name, got %v", err)
	}

	if err = rule.ValidateVar("book.epub", "pdf_name"); err == nil {
		t.Error("Expected error for non-pdf name, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("lang_code", "required,min=2,max=8")

	if err := rule.ValidateVar("fr", "lang_code"); err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	if err := rule.ValidateVar("f", "lang_code"); err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}
