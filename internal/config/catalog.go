package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MinInsuranceTier and MaxInsuranceTier bound the insurance risk classification.
const (
	MinInsuranceTier = 0
	MaxInsuranceTier = 3
)

// DefaultPermitFee is the permit fee every catalog must offer.
const DefaultPermitFee = 35.0

// Catalog is an immutable snapshot of the fee and insurance reference tables.
type Catalog struct {
	Fees      FeeCatalog      `mapstructure:"fees"`
	Insurance []InsuranceTier `mapstructure:"insurance"`
}

type FeeCatalog struct {
	ApplicationFee []FeeOption `mapstructure:"application_fee"`
	PermitFee      []FeeOption `mapstructure:"permit_fee"`
}

type FeeOption struct {
	Amount    float64 `mapstructure:"amount"`
	ProductID string  `mapstructure:"product_id"`
}

type InsuranceTier struct {
	Tier       int      `mapstructure:"tier"`
	LimitText  string   `mapstructure:"limit_text"`
	Activities []string `mapstructure:"activities"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Fees: FeeCatalog{
			ApplicationFee: []FeeOption{
				{Amount: 25, ProductID: "prod_application_fee_25"},
				{Amount: 50, ProductID: "prod_application_fee_50"},
				{Amount: 100, ProductID: "prod_application_fee_100"},
			},
			PermitFee: []FeeOption{
				{Amount: 35, ProductID: "prod_permit_fee_35"},
				{Amount: 50, ProductID: "prod_permit_fee_50"},
				{Amount: 75, ProductID: "prod_permit_fee_75"},
				{Amount: 100, ProductID: "prod_permit_fee_100"},
				{Amount: 150, ProductID: "prod_permit_fee_150"},
				{Amount: 250, ProductID: "prod_permit_fee_250"},
				{Amount: 500, ProductID: "prod_permit_fee_500"},
			},
		},
		Insurance: []InsuranceTier{
			{
				Tier:      0,
				LimitText: "No insurance required",
				Activities: []string{
					"Ceremony under 50 guests",
					"Memorial service",
					"Photography (personal)",
					"Small group gathering",
				},
			},
			{
				Tier:      1,
				LimitText: "$1,000,000 per occurrence",
				Activities: []string{
					"Wedding",
					"Family reunion",
					"Guided walk",
					"Fishing tournament",
					"Photography (commercial)",
				},
			},
			{
				Tier:      2,
				LimitText: "$1,000,000 per occurrence / $2,000,000 aggregate",
				Activities: []string{
					"Festival",
					"Concert",
					"Commercial filming",
					"Run or walk event",
					"Vendor sales",
					"Photography (commercial)",
				},
			},
			{
				Tier:      3,
				LimitText: "$2,000,000 per occurrence / $3,000,000 aggregate",
				Activities: []string{
					"Fireworks display",
					"Motorized event",
					"Aerial activity",
					"Equestrian event",
					"Triathlon",
				},
			},
		},
	}
}

// Clone returns a deep copy so callers never share backing arrays with the holder.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Fees: FeeCatalog{
			ApplicationFee: append([]FeeOption(nil), c.Fees.ApplicationFee...),
			PermitFee:      append([]FeeOption(nil), c.Fees.PermitFee...),
		},
		Insurance: make([]InsuranceTier, 0, len(c.Insurance)),
	}
	for _, tier := range c.Insurance {
		out.Insurance = append(out.Insurance, InsuranceTier{
			Tier:       tier.Tier,
			LimitText:  tier.LimitText,
			Activities: append([]string(nil), tier.Activities...),
		})
	}
	return out
}

type CatalogHolder struct {
	current atomic.Value // holds Catalog
}

// NewStaticCatalogHolder wraps a fixed catalog; used by tests and tools.
func NewStaticCatalogHolder(c Catalog) (*CatalogHolder, error) {
	if err := ValidateCatalog(c); err != nil {
		return nil, err
	}
	holder := &CatalogHolder{}
	holder.current.Store(c.Clone())
	return holder, nil
}

func NewCatalogHolder(cfg Config, log *zap.Logger) (*CatalogHolder, error) {
	log = log.Named("catalog")

	v := viper.New()
	if path := strings.TrimSpace(getenv("CATALOG_PATH", "")); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/permitdesk")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		log.Info("catalog file not found, using defaults")
		return NewStaticCatalogHolder(DefaultCatalog())
	}

	loaded, err := decodeCatalog(v)
	if err != nil {
		return nil, err
	}

	holder := &CatalogHolder{}
	holder.current.Store(loaded)
	log.Info("catalog loaded", zap.String("file", v.ConfigFileUsed()))

	if cfg.CatalogWatch {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeCatalog(v)
			if err != nil {
				log.Warn("catalog reload ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("catalog reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

// LoadCatalogFile reads and validates a catalog file without watching it.
func LoadCatalogFile(path string) (Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return decodeCatalog(v)
}

func (h *CatalogHolder) Get() Catalog {
	return h.current.Load().(Catalog).Clone()
}

func decodeCatalog(v *viper.Viper) (Catalog, error) {
	var c Catalog
	if err := v.Unmarshal(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := ValidateCatalog(c); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func ValidateCatalog(c Catalog) error {
	if err := validateFeeOptions("application_fee", c.Fees.ApplicationFee); err != nil {
		return err
	}
	if err := validateFeeOptions("permit_fee", c.Fees.PermitFee); err != nil {
		return err
	}
	hasDefault := false
	for _, opt := range c.Fees.PermitFee {
		if opt.Amount == DefaultPermitFee {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		return fmt.Errorf("fees.permit_fee must include the default amount %.2f", DefaultPermitFee)
	}

	if len(c.Insurance) == 0 {
		return errors.New("insurance cannot be empty")
	}
	seen := map[int]bool{}
	for _, tier := range c.Insurance {
		if tier.Tier < MinInsuranceTier || tier.Tier > MaxInsuranceTier {
			return fmt.Errorf("insurance tier %d out of range", tier.Tier)
		}
		if seen[tier.Tier] {
			return fmt.Errorf("insurance tier %d declared twice", tier.Tier)
		}
		seen[tier.Tier] = true
		if strings.TrimSpace(tier.LimitText) == "" {
			return fmt.Errorf("insurance tier %d requires limit_text", tier.Tier)
		}
	}
	return nil
}

func validateFeeOptions(key string, options []FeeOption) error {
	if len(options) == 0 {
		return fmt.Errorf("fees.%s cannot be empty", key)
	}
	seen := map[float64]bool{}
	for _, opt := range options {
		if opt.Amount <= 0 {
			return fmt.Errorf("fees.%s amounts must be positive", key)
		}
		if strings.TrimSpace(opt.ProductID) == "" {
			return fmt.Errorf("fees.%s amount %.2f has no product_id", key, opt.Amount)
		}
		if seen[opt.Amount] {
			return fmt.Errorf("fees.%s amount %.2f declared twice", key, opt.Amount)
		}
		seen[opt.Amount] = true
	}
	return nil
}
