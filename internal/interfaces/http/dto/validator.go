// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationDetails 校验错误详情（表单级与字段级）
type ValidationDetails struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newValidationDetails() *ValidationDetails {
	return &ValidationDetails{
		FormErrors:  []string{},
		FieldErrors: map[string][]string{},
	}
}

func (d *ValidationDetails) addField(field, msg string) {
	d.FieldErrors[field] = append(d.FieldErrors[field], msg)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator 返回使用 JSON 字段名的校验器
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// BindJSON 解析请求体，失败时返回校验详情
func BindJSON(c *gin.Context, dst any) *ValidationDetails {
	if err := c.ShouldBindJSON(dst); err != nil {
		return decodeErrorDetails(err)
	}
	return nil
}

// ValidateStruct 执行结构体校验
func ValidateStruct(s any) *ValidationDetails {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	details := newValidationDetails()
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		details.FormErrors = append(details.FormErrors, err.Error())
		return details
	}
	for _, fe := range verrs {
		details.addField(fe.Field(), getErrorMessage(fe))
	}
	return details
}

func decodeErrorDetails(err error) *ValidationDetails {
	details := newValidationDetails()

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		details.addField(typeErr.Field, fmt.Sprintf("Expected %s, received %s", expectedKind(typeErr.Type), typeErr.Value))
	case errors.Is(err, io.EOF):
		details.FormErrors = append(details.FormErrors, "Request body is required")
	case errors.As(err, &syntaxErr):
		details.FormErrors = append(details.FormErrors, "Malformed JSON body")
	case errors.As(err, &typeErr):
		details.FormErrors = append(details.FormErrors, fmt.Sprintf("Expected object, received %s", typeErr.Value))
	default:
		details.FormErrors = append(details.FormErrors, err.Error())
	}
	return details
}

func expectedKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}

// getErrorMessage 按校验标签生成错误消息
func getErrorMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Required"
	case "gt":
		return fmt.Sprintf("Number must be greater than %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Number must be less than or equal to %s", fe.Param())
	case "oneof":
		opts := strings.Fields(fe.Param())
		return fmt.Sprintf("Invalid enum value. Expected '%s'", strings.Join(opts, "' | '"))
	default:
		return fmt.Sprintf("Invalid value for %s (%s)", fe.Field(), fe.Tag())
	}
}
