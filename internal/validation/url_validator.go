package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("source_url", validateSourceURL)
}

// ValidateURLs checks that every source URL points at a public http(s) page.
// The tracked page is always a public site; loopback and private addresses
// would only ever be the job service itself, which is never a valid source.
func ValidateURLs(urls []string) error {
	for _, u := range urls {
		if err := validate.Var(u, "required,source_url"); err != nil {
			return fmt.Errorf("invalid source URL %q: %w", u, err)
		}
	}
	return nil
}

func validateSourceURL(fl validator.FieldLevel) bool {
	urlStr := fl.Field().String()

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if u.Host == "" {
		return false
	}

	host := u.Hostname()

	forbiddenHosts := []string{
		"localhost",
		"127.0.0.1",
		"::1",
		"0.0.0.0",
	}

	for _, forbidden := range forbiddenHosts {
		if strings.EqualFold(host, forbidden) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			return false
		}
	}

	return true
}
