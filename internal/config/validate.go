package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"aqdaily/internal/dataprocessing"
	apperrors "aqdaily/internal/errors"
)

// newValidator builds a validator with the domain-specific tags registered.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("strptime", func(fl validator.FieldLevel) bool {
		_, err := dataprocessing.CompileTimestampFormat(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("resolution", func(fl validator.FieldLevel) bool {
		_, err := dataprocessing.ParseResolution(fl.Field().String())
		return err == nil
	})

	// Use YAML tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate validates the configuration
func (c *Config) validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError(strings.Join(msgs, "; "), nil)
		}
		return apperrors.NewConfigError("invalid configuration", err)
	}

	seen := make(map[string]struct{}, len(c.Manufacturers))
	for _, m := range c.Manufacturers {
		if _, dup := seen[m.Name]; dup {
			return apperrors.NewConfigError(fmt.Sprintf("manufacturer %q defined twice", m.Name), nil)
		}
		seen[m.Name] = struct{}{}

		devices := make(map[string]struct{}, len(m.Devices))
		for _, d := range m.Devices {
			if _, dup := devices[d.ID]; dup {
				return apperrors.NewConfigError(
					fmt.Sprintf("manufacturer %q lists device %q twice", m.Name, d.ID), nil)
			}
			devices[d.ID] = struct{}{}
		}
		if _, err := dataprocessing.CheckValidationConfig(m.ValidationConfig()); err != nil {
			return apperrors.NewConfigError(fmt.Sprintf("manufacturer %q", m.Name), err)
		}
	}

	switch c.Upload.Provider {
	case "s3":
		if c.Upload.S3.Bucket == "" {
			return apperrors.NewConfigError("upload.s3.bucket is required for the s3 provider", nil)
		}
	case "drive":
		if c.Upload.Drive.CredentialsFile == "" {
			return apperrors.NewConfigError("upload.drive.credentials_file is required for the drive provider", nil)
		}
	}

	return nil
}
