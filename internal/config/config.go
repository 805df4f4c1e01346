package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Identifiers and secrets
// stay strings; numeric knobs are parsed up front so a bad value
// aborts startup instead of surfacing mid-request.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	AMQPURL         string // broker URL for mail-dispatch events (optional)
	VATRatePermille int    // fixed VAT rate in permille (200 = 20%)
	InvoicePrefix   string // invoice number prefix (e.g. "FA")
	AssetBaseURL    string // base URL for loading document assets such as the logo
	CompanyName     string // legal company name printed in document footers
	CompanySIRET    string // company registration number for document footers
	CompanyAPE      string // company activity code for document footers
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                 // environment (dev/test/prod)
		Port:            must("APP_PORT"),                // port to bind the HTTP server
		DBUser:          must("DB_USER"),                 // database user
		DBPass:          os.Getenv("DB_PASS"),            // database password (empty allowed)
		DBHost:          must("DB_HOST"),                 // database host
		DBPort:          must("DB_PORT"),                 // database port
		DBName:          must("DB_NAME"),                 // database name
		AMQPURL:         os.Getenv("AMQP_URL"),           // broker URL (empty disables publishing)
		VATRatePermille: intOr("VAT_RATE_PERMILLE", 200), // fixed VAT rate, 20% by default
		InvoicePrefix:   strOr("INVOICE_PREFIX", "FA"),   // invoice number prefix
		AssetBaseURL:    os.Getenv("ASSET_BASE_URL"),     // logo base URL (empty = no logo)
		CompanyName:     must("COMPANY_NAME"),            // printed on every document footer
		CompanySIRET:    must("COMPANY_SIRET"),           // registration identifier
		CompanyAPE:      strOr("COMPANY_APE", ""),        // activity code (optional)
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the variable's value or a default when unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr is like strOr but converts the value to an integer.  An
// unparsable value is fatal: a silently wrong VAT rate would corrupt
// every invoice issued afterwards.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
