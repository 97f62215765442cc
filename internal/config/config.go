package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr    string
	RedisDB      int
	NotifyChan   string
	IdempTTLSecs int

	Lending LendingPolicy
}

// LendingPolicy carries every tunable of the origination and revaluation
// rules. Defaults mirror the production policy.
type LendingPolicy struct {
	MinLTV     float64
	MaxLTV     float64
	DefaultLTV float64

	MinTermDays     int
	MaxTermDays     int
	DefaultTermDays int

	AnnualInterestRate float64
	OriginationFeeRate float64
	ProcessingFee      float64

	MinQuantityKg       float64
	MinPricePerKg       float64
	AllowedConditions   []string
	AllowedStatuses     []string
	MarginCallThreshold float64
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvList(k string, d []string) []string {
	if v := os.Getenv(k); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, strings.ToLower(p))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "agripledge"),
		MySQLUser: getenv("MYSQL_USER", "agripledge"),
		MySQLPass: getenv("MYSQL_PASS", "agripledge"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		NotifyChan:   getenv("NOTIFY_CHANNEL", "agripledge.loan.events"),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		Lending: LendingPolicy{
			MinLTV:     0.50,
			MaxLTV:     0.80,
			DefaultLTV: getenvFloat("LENDING_DEFAULT_LTV", 0.60),

			MinTermDays:     7,
			MaxTermDays:     365,
			DefaultTermDays: getenvInt("LENDING_DEFAULT_TERM_DAYS", 90),

			AnnualInterestRate: getenvFloat("LENDING_APR", 0.18),
			OriginationFeeRate: getenvFloat("LENDING_ORIGINATION_FEE_RATE", 0.02),
			ProcessingFee:      getenvFloat("LENDING_PROCESSING_FEE", 0),

			MinQuantityKg:       getenvFloat("LENDING_MIN_QUANTITY_KG", 50),
			MinPricePerKg:       getenvFloat("LENDING_MIN_PRICE_PER_KG", 10),
			AllowedConditions:   getenvList("LENDING_ALLOWED_CONDITIONS", []string{"fresh", "good", "excellent", "a"}),
			AllowedStatuses:     getenvList("LENDING_ALLOWED_STATUSES", []string{"active", "listed", "monitoring", "stocked"}),
			MarginCallThreshold: getenvFloat("LENDING_MARGIN_CALL_THRESHOLD", 0.75),
		},
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	p := c.Lending
	if p.MinLTV <= 0 || p.MaxLTV <= p.MinLTV || p.MaxLTV >= 1 {
		return fmt.Errorf("invalid LTV bounds [%v, %v]", p.MinLTV, p.MaxLTV)
	}
	if p.DefaultLTV < p.MinLTV || p.DefaultLTV > p.MaxLTV {
		return fmt.Errorf("LENDING_DEFAULT_LTV %v outside [%v, %v]", p.DefaultLTV, p.MinLTV, p.MaxLTV)
	}
	if p.DefaultTermDays < p.MinTermDays || p.DefaultTermDays > p.MaxTermDays {
		return fmt.Errorf("LENDING_DEFAULT_TERM_DAYS %d outside [%d, %d]", p.DefaultTermDays, p.MinTermDays, p.MaxTermDays)
	}
	if p.AnnualInterestRate < 0 || p.OriginationFeeRate < 0 || p.ProcessingFee < 0 {
		return errors.New("lending rates and fees must be non-negative")
	}
	if p.MarginCallThreshold <= 0 || p.MarginCallThreshold >= 1 {
		return fmt.Errorf("invalid LENDING_MARGIN_CALL_THRESHOLD %v", p.MarginCallThreshold)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
