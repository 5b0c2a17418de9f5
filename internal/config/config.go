package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"deviseur/internal"
)

type Config struct {
	DBPath    string
	OutputDir string
	LogLevel  string
	HTTPAddr  string

	CatalogueSource    string
	CatalogueDelimiter string
	FetchTimeoutMs     int
	LogoURL            string
	PlaceholderImage   string

	// CatalogueRefreshSec is the server's reload interval, 0 disables it.
	CatalogueRefreshSec   int
	CatalogueRefreshPages bool

	VATRate           float64
	OfferValidityDays int

	CompanyName          string
	CompanyBrandCode     string
	CompanyAddress       []string
	CompanyContacts      []string
	CompanyLegal         []string
	CompanyPaymentTerms  string
	CompanyDeliveryLead  string
	CompanyToleranceNote string

	MailFromName    string
	MailFromAddress string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost         string
	IMAPPort         int
	IMAPSecure       bool
	IMAPUser         string
	IMAPPassword     string
	IMAPDraftsFolder string
}

// Load reads .env, then an optional deviseur.yaml, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigName("deviseur")
	v.SetConfigType("yaml")
	v.AddConfigPath(cwd)
	setDefaults(v, cwd)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read deviseur.yaml: %w", err)
		}
	}

	cfg := Config{
		DBPath:    v.GetString("DB_PATH"),
		OutputDir: v.GetString("OUTPUT_DIR"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		HTTPAddr:  v.GetString("HTTP_ADDR"),

		CatalogueSource:    v.GetString("CATALOGUE_SOURCE"),
		CatalogueDelimiter: v.GetString("CATALOGUE_DELIMITER"),
		FetchTimeoutMs:     v.GetInt("CATALOGUE_FETCH_TIMEOUT_MS"),
		LogoURL:            v.GetString("LOGO_URL"),
		PlaceholderImage:   v.GetString("PLACEHOLDER_IMAGE_URL"),

		CatalogueRefreshSec:   v.GetInt("CATALOGUE_REFRESH_INTERVAL_SEC"),
		CatalogueRefreshPages: v.GetBool("CATALOGUE_REFRESH_PAGES"),

		VATRate:           v.GetFloat64("VAT_RATE"),
		OfferValidityDays: v.GetInt("OFFER_VALIDITY_DAYS"),

		CompanyName:          v.GetString("COMPANY_NAME"),
		CompanyBrandCode:     v.GetString("COMPANY_BRAND_CODE"),
		CompanyAddress:       splitList(v.GetString("COMPANY_ADDRESS")),
		CompanyContacts:      splitList(v.GetString("COMPANY_CONTACTS")),
		CompanyLegal:         splitList(v.GetString("COMPANY_LEGAL")),
		CompanyPaymentTerms:  v.GetString("COMPANY_PAYMENT_TERMS"),
		CompanyDeliveryLead:  v.GetString("COMPANY_DELIVERY_LEAD"),
		CompanyToleranceNote: v.GetString("COMPANY_TOLERANCE_NOTE"),

		MailFromName:    v.GetString("MAIL_FROM_NAME"),
		MailFromAddress: v.GetString("MAIL_FROM_ADDRESS"),

		GmailClientID:     v.GetString("GMAIL_CLIENT_ID"),
		GmailClientSecret: v.GetString("GMAIL_CLIENT_SECRET"),
		GmailRedirectURI:  v.GetString("GMAIL_REDIRECT_URI"),
		GmailRefreshToken: v.GetString("GMAIL_REFRESH_TOKEN"),

		IMAPHost:         v.GetString("IMAP_HOST"),
		IMAPPort:         v.GetInt("IMAP_PORT"),
		IMAPSecure:       v.GetBool("IMAP_SECURE"),
		IMAPUser:         v.GetString("IMAP_USER"),
		IMAPPassword:     v.GetString("IMAP_PASSWORD"),
		IMAPDraftsFolder: v.GetString("IMAP_DRAFTS_FOLDER"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cwd string) {
	v.SetDefault("DB_PATH", filepath.Join(cwd, "data", "app.db"))
	v.SetDefault("OUTPUT_DIR", filepath.Join(cwd, "out"))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", "127.0.0.1:8080")

	v.SetDefault("CATALOGUE_SOURCE", filepath.Join(cwd, "catalogue", "export.csv"))
	v.SetDefault("CATALOGUE_DELIMITER", ";")
	v.SetDefault("CATALOGUE_FETCH_TIMEOUT_MS", 30000)
	v.SetDefault("CATALOGUE_REFRESH_INTERVAL_SEC", 0)
	v.SetDefault("CATALOGUE_REFRESH_PAGES", false)
	v.SetDefault("LOGO_URL", "")
	v.SetDefault("PLACEHOLDER_IMAGE_URL", "https://via.placeholder.com/640x480.png?text=Image+indisponible")

	v.SetDefault("VAT_RATE", 0.20)
	v.SetDefault("OFFER_VALIDITY_DAYS", 30)

	v.SetDefault("COMPANY_NAME", "ID GROUP - MK Distribution")
	v.SetDefault("COMPANY_BRAND_CODE", "MKC/PR1/ER3 - Indice B")
	v.SetDefault("COMPANY_ADDRESS", "ALPESPACE - FRANCIN|47 voie Saint-Exupéry|73800 Porte-de-Savoie|France")
	v.SetDefault("COMPANY_CONTACTS", "Téléphone : 00.33.4.79.84.36.06  •  Télécopie : 00.33.4.79.84.36.10|Email : ids@ids-france.net|Téléphone : 00.33.4.79.84.14.18  •  Télécopie : 00.33.4.79.84.14.19|Email : idmat@id-mat.com")
	v.SetDefault("COMPANY_LEGAL", "SIRET : 403 401 854 00035  •  TVA : FR 12 403 401 854  •  NAF : 4669B|Capital social : 1 000 000 €  •  RCS Chambéry 403 401 854  •  N° EORI : FR403401854")
	v.SetDefault("COMPANY_PAYMENT_TERMS", "Conditions de paiement : acompte à la commande, solde à la livraison")
	v.SetDefault("COMPANY_DELIVERY_LEAD", "Délais de livraison estimés : 4 à 6 semaines après confirmation")
	v.SetDefault("COMPANY_TOLERANCE_NOTE", "Tolérance dimensionnelles / Dimensional tolerance +/-5%  -  Tolérance de découpe / Cutting tolerance +/-5%")

	v.SetDefault("MAIL_FROM_NAME", "ID GROUP - MK Distribution")
	v.SetDefault("MAIL_FROM_ADDRESS", "")

	v.SetDefault("GMAIL_CLIENT_ID", "")
	v.SetDefault("GMAIL_CLIENT_SECRET", "")
	v.SetDefault("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground")
	v.SetDefault("GMAIL_REFRESH_TOKEN", "")

	v.SetDefault("IMAP_HOST", "")
	v.SetDefault("IMAP_PORT", 993)
	v.SetDefault("IMAP_SECURE", true)
	v.SetDefault("IMAP_USER", "")
	v.SetDefault("IMAP_PASSWORD", "")
	v.SetDefault("IMAP_DRAFTS_FOLDER", "Drafts")
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// Delimiter is the first rune of CatalogueDelimiter, ';' when unset.
func (c Config) Delimiter() rune {
	for _, r := range c.CatalogueDelimiter {
		return r
	}
	return ';'
}

func (c Config) Company() internal.CompanyIdentity {
	return internal.CompanyIdentity{
		Name:          c.CompanyName,
		BrandCode:     c.CompanyBrandCode,
		Address:       c.CompanyAddress,
		Contacts:      c.CompanyContacts,
		LegalLines:    c.CompanyLegal,
		PaymentTerms:  c.CompanyPaymentTerms,
		DeliveryLead:  c.CompanyDeliveryLead,
		ToleranceNote: c.CompanyToleranceNote,
	}
}

// splitList splits a "|" separated setting into trimmed non-empty entries.
func splitList(value string) []string {
	parts := strings.Split(value, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
