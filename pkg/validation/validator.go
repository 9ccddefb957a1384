package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "maintenance-system/pkg/errors"
)

// CustomValidator - обертка для использования в Echo и в сервисах
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator. Ошибки приводятся к apperrors.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	return Translate(cv.validator.Struct(i))
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()

	// В ошибках используем имена из json-тегов, чтобы фронтенд узнавал поля.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// 1. Подключаем поддержку null-типов (из файла types_adapter.go)
	registerNullTypes(v)

	// 2. Регистрируем кастомные правила (из файла rules.go)
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// Translate превращает validator.ValidationErrors в ValidationError с деталями по полям.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("ошибка валидации", map[string]string{"_": err.Error()})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return apperrors.NewValidationError("ошибка валидации", fields)
}

// fieldPath убирает имя корневой структуры: "CreateRequestDTO.form.location" -> "form.location".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "oneof":
		return fmt.Sprintf("допустимые значения: %s", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("значение должно быть не меньше %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("значение должно быть не больше %s", fe.Param())
	case "gt":
		return fmt.Sprintf("значение должно быть больше %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("ожидается дата в формате %s", fe.Param())
	case "not_blank":
		return "поле не может состоять из пробелов"
	}
	return fmt.Sprintf("не прошло проверку %q", fe.Tag())
}
