package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

// nonFieldError is the key for errors not tied to one field.
const nonFieldError = "__all__"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return utils.ValidSlug(fl.Field().String())
	})
	return v
}

type PostForm struct {
	Text     string `form:"text" validate:"required"`
	GroupRaw string `form:"group"`

	Group        uint   `form:"-"`
	ClearImage   bool   `form:"-"`
	CurrentImage string `form:"-"`
}

type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
	Captcha   string `form:"captcha" validate:"required"`
}

type GroupForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description" validate:"required"`
}

// bindForm binds the request into form, trims its text fields and validates
// it. A nil result means the form is valid.
func bindForm(c *gin.Context, form interface{ trim() }) FieldErrors {
	if err := c.ShouldBind(form); err != nil {
		return FieldErrors{nonFieldError: "The submitted form could not be read."}
	}
	form.trim()
	return validateForm(form)
}

func validateForm(form interface{}) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{nonFieldError: err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "min":
		return fmt.Sprintf("This value is too short. It must contain at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn’t match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens."
	}
	return "Enter a valid value."
}

func (f *PostForm) trim() {
	f.Text = strings.TrimSpace(f.Text)
	f.GroupRaw = strings.TrimSpace(f.GroupRaw)
}

func (f *CommentForm) trim() {
	f.Text = strings.TrimSpace(f.Text)
}

// Passwords are kept as typed.
func (f *SignupForm) trim() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Captcha = strings.TrimSpace(f.Captcha)
}

// trim also fills a blank slug from the title.
func (f *GroupForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
	if f.Slug == "" {
		f.Slug = utils.Slugify(f.Title)
	}
}
