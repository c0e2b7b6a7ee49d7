package binder

import (
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/bookshelf-api/bookshelf/pkg/errcodes"
	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/segmentio/encoding/json"
)

const (
	// DisallowUnknownFieldsKey is the echo context key a route can set to
	// false to accept JSON bodies with keys the payload struct doesn't have.
	DisallowUnknownFieldsKey = "disallow_unknown_fields"
	// DisallowEmptyBodyKey is the echo context key a route can set to false to
	// accept POST/PUT requests without a body.
	DisallowEmptyBodyKey = "disallow_empty_body"
	// DisallowNonJSONBodyKey is the echo context key a route can set to false
	// to treat a body that isn't JSON as an empty payload instead of a 415.
	// Validation then reports the missing fields.
	DisallowNonJSONBodyKey = "disallow_non_json_body"
)

var unknownFieldsRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Binder is a custom struct that implements the Echo Binder interface. It binds
// to a struct, uses mold to clean up the params, and validator to validate
// them.
type Binder struct {
	queryDecoder *schema.Decoder
	conform      *mold.Transformer
	validate     *validator.Validate
}

// New initializes a new Binder instance. Validation errors name fields by
// their JSON key.
func New() (*Binder, error) {
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	conform := modifiers.New()
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Binder{queryDecoder, conform, validate}, nil
}

// Bind binds, modifies, and validates payloads against the given struct.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	disallowEmptyBody := true
	if disallow, ok := c.Get(DisallowEmptyBodyKey).(bool); ok {
		disallowEmptyBody = disallow
	}

	if req.ContentLength != 0 {
		// request has a body (or a chunked one of unknown length)
		ctype := req.Header.Get(echo.HeaderContentType)
		if strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
			if err := b.decodeJSON(i, c); err != nil {
				return err
			}
		} else {
			disallowNonJSON := true
			if disallow, ok := c.Get(DisallowNonJSONBodyKey).(bool); ok {
				disallowNonJSON = disallow
			}
			if disallowNonJSON {
				return errcodes.UnsupportedMediaType()
			}
			_, _ = io.Copy(io.Discard, req.Body)
			_ = req.Body.Close()
		}
	} else {
		// request doesn't have a body
		if req.Method == http.MethodGet || req.Method == http.MethodDelete {
			if err := b.decodeQuery(i, c.QueryParams()); err != nil {
				return errors.WithStack(err)
			}
		} else if disallowEmptyBody {
			return errcodes.EmptyRequestBody()
		}
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		errs := err.(validator.ValidationErrors)
		msg := formatValidationError(errs[0])
		return errcodes.ValidationError(msg)
	}
	return nil
}

func (b *Binder) decodeJSON(i interface{}, c echo.Context) error {
	req := c.Request()
	defer req.Body.Close()

	dec := json.NewDecoder(req.Body)
	// keys must match the json tags exactly; "name" doesn't fill Name
	dec.DontMatchCaseInsensitiveStructFields()
	disallowUnknownFields := true
	if disallow, ok := c.Get(DisallowUnknownFieldsKey).(bool); ok {
		disallowUnknownFields = disallow
	}
	if disallowUnknownFields {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(i); err != nil {
		// return better error message when there are unknown fields
		if matches := unknownFieldsRE.FindAllStringSubmatch(err.Error(), -1); len(matches) > 0 && len(matches[0]) > 1 {
			return errcodes.UnknownParameter(matches[0][1])
		}

		// return better error message on type errors
		if err, ok := err.(*json.UnmarshalTypeError); ok {
			msg := formatUnmarshalTypeError(err)
			return errcodes.ValidationTypeError(msg)
		}

		logger.FromEchoContext(c).Err(err).Warn("json decode error")

		return errcodes.MalformedPayload()
	}
	return nil
}

func (b *Binder) decodeQuery(i interface{}, params url.Values) error {
	if err := b.queryDecoder.Decode(i, params); err != nil {
		if errs, ok := err.(schema.MultiError); ok {
			var err error
			for _, err = range errs {
				break
			}

			if err, ok := err.(schema.ConversionError); ok {
				msg := formatSchemaConversionError(err)
				return errcodes.ValidationTypeError(msg)
			}
			if err, ok := err.(schema.UnknownKeyError); ok {
				return errcodes.UnknownParameter(err.Key)
			}

			return errors.WithStack(err)
		}
		return errors.WithStack(err)
	}
	return nil
}
