package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"yamdb/internal/httpapi/permissions"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pagination pulls page/page_size from the query string, clamped to sane
// bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// subject builds the permission subject for the request. Role defaults to
// anonymous when no middleware set one.
func subject(c *gin.Context) permissions.Subject {
	role := c.GetString("role")
	if role == "" {
		role = permissions.RoleAnonymous
	}
	return permissions.Subject{Role: role}
}

// deny writes the standard rejection: 401 for anonymous callers, 403 for
// authenticated ones lacking the role or ownership.
func deny(c *gin.Context, s permissions.Subject) {
	if !s.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	} else {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
	c.Abort()
}

// validationBody converts a binding failure into the field-keyed shape
// clients consume: {"field": "message"}. Malformed JSON has no field to
// blame and falls back to a single error key.
func validationBody(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gin.H{"error": err.Error()}
	}
	body := gin.H{}
	for _, fe := range verrs {
		body[snakeCase(fe.Field())] = validationMessage(fe)
	}
	return body
}

func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}
