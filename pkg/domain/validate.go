package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return IsSafeID(fl.Field().String())
		})
		structValidator = v
	})
	return structValidator
}

// IsSafeID reports whether id is non-empty and contains only letters,
// digits, hyphens and underscores.
func IsSafeID(id string) bool {
	return slugPattern.MatchString(id)
}

type validateConfig struct {
	strictSequence bool
}

// ValidateOption tunes Validate.
type ValidateOption func(*validateConfig)

// StrictSequence additionally requires the first card to be an intro, the
// last card to be a celebration and every choice card to be selectable.
func StrictSequence() ValidateOption {
	return func(c *validateConfig) {
		c.strictSequence = true
	}
}

// Validate checks the tutorial against the card model rules: id, title and a
// non-empty card sequence are present, each card type is recognized, and
// every quiz card has exactly one correct option.
// All violations are returned together as an *AggregateError.
func (t *Tutorial) Validate(opts ...ValidateOption) error {
	if t == nil {
		return NewShapeError("tutorial", "is missing")
	}
	cfg := validateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var errs []error
	if err := getValidator().Struct(t); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return NewShapeError("tutorial", err.Error())
		}
		for _, fe := range fieldErrs {
			errs = append(errs, NewShapeError(fe.Field(), describeTag(fe)))
		}
	}

	for i := range t.Cards {
		errs = append(errs, validateCard(i, &t.Cards[i], cfg)...)
	}

	if cfg.strictSequence && len(t.Cards) > 0 {
		if first := t.Cards[0].Type; first != CardIntro {
			errs = append(errs, NewCardShapeError(0, first, "type", "first card must be intro"))
		}
		last := len(t.Cards) - 1
		if lt := t.Cards[last].Type; lt != CardCelebration {
			errs = append(errs, NewCardShapeError(last, lt, "type", "last card must be celebration"))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}

func validateCard(i int, c *Card, cfg validateConfig) []error {
	if !c.Type.Valid() {
		return []error{NewCardShapeError(i, "", "type", fmt.Sprintf("unrecognized card type %q", c.Type))}
	}

	var errs []error
	switch c.Type {
	case CardQuiz:
		correct := 0
		for _, opt := range c.Options {
			if opt.Correct {
				correct++
			}
		}
		if correct != 1 {
			errs = append(errs, NewCardShapeError(i, c.Type, "options",
				fmt.Sprintf("must have exactly one correct option, found %d", correct)))
		}
	case CardChoice:
		if !cfg.strictSequence {
			break
		}
		if c.Store == "" {
			errs = append(errs, NewCardShapeError(i, c.Type, "store", "is required"))
		}
		if len(c.Choices) == 0 {
			errs = append(errs, NewCardShapeError(i, c.Type, "choices", "must not be empty"))
		}
		for j, ch := range c.Choices {
			if ch.Tag == "" {
				errs = append(errs, NewCardShapeError(i, c.Type, fmt.Sprintf("choices[%d].tag", j), "is required"))
			}
		}
	}
	return errs
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s element(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "slug":
		return "must contain only letters, digits, hyphens and underscores"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
