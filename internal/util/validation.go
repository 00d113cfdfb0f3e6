package util

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// 校验错误中使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// BindError 处理 ShouldBindJSON 的错误，校验失败时返回字段详情
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ve := NewValidationError()
		for _, fe := range verrs {
			ve.Add(fieldPath(fe.Namespace()), describeTag(fe.Tag()))
		}
		ValidationFailed(c, ve)
		return
	}
	BadRequest(c, "invalid request body: "+err.Error())
}

// fieldPath 去掉顶层结构体名，CreateSurveyReq.questions[0].type -> questions[0].type
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "oneof":
		return "has an unsupported value"
	}
	return "failed " + tag + " validation"
}
