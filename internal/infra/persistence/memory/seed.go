package memory

import (
	"embed"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/errors"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// age is a point in the past relative to process start.
type age struct {
	months int
	span   time.Duration
}

func (a *age) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}

	parsed, err := parseAge(raw)
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}

func parseAge(raw string) (age, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return age{}, nil
	case strings.HasSuffix(raw, "mo"):
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "mo"))
		if err != nil {
			return age{}, errors.Wrapf(err, "invalid age %q", raw)
		}

		return age{months: n}, nil
	case strings.HasSuffix(raw, "d"):
		days, err := strconv.ParseFloat(strings.TrimSuffix(raw, "d"), 64)
		if err != nil {
			return age{}, errors.Wrapf(err, "invalid age %q", raw)
		}

		return age{span: time.Duration(days * float64(24*time.Hour))}, nil
	default:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return age{}, errors.Wrapf(err, "invalid age %q", raw)
		}

		return age{span: d}, nil
	}
}

func (a age) before(now time.Time) time.Time {
	return now.AddDate(0, -a.months, 0).Add(-a.span)
}

type seedFile struct {
	Password string            `json:"password"`
	Users    []entity.User     `json:"users"`
	Products []json.RawMessage `json:"products"`
	Sales    []struct {
		entity.Sale
		Ago age `json:"ago"`
	} `json:"sales"`
	AffiliateClicks []struct {
		entity.AffiliateClick
		Ago age `json:"ago"`
	} `json:"affiliateClicks"`
	AffiliateSales []struct {
		entity.AffiliateSale
		Ago age `json:"ago"`
	} `json:"affiliateSales"`
	Notifications []struct {
		entity.Notification
		Ago age `json:"ago"`
	} `json:"notifications"`
}

// decodeYAML reads YAML into target through JSON so the entities' own JSON
// decoders handle tagged unions.
func decodeYAML(name string, target any) error {
	raw, err := seedFS.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return errors.Wrapf(err, "parse %s", name)
	}

	bridged, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "convert %s", name)
	}

	return errors.Wrapf(json.Unmarshal(bridged, target), "decode %s", name)
}

func loadSeed(hasher service.PasswordHasher, now time.Time) (*dataset, error) {
	var file seedFile
	if err := decodeYAML("seed/seed.yaml", &file); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(file.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash seed password")
	}

	data := newDataset()

	for i := range file.Users {
		u := file.Users[i]
		u.PasswordHash = hash
		if err := u.Validate(); err != nil {
			return nil, err
		}
		data.users = append(data.users, &u)
	}

	for _, raw := range file.Products {
		p := &entity.Product{}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, errors.Wrap(err, "decode seed product")
		}
		for j := range p.Reviews {
			if p.Reviews[j].Date.IsZero() {
				p.Reviews[j].Date = now
			}
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		data.products = append(data.products, p)
	}

	for _, s := range file.Sales {
		sale := s.Sale
		sale.Date = s.Ago.before(now)
		data.sales = append(data.sales, sale)
	}
	for _, c := range file.AffiliateClicks {
		click := c.AffiliateClick
		click.Date = c.Ago.before(now)
		data.clicks = append(data.clicks, click)
	}
	for _, s := range file.AffiliateSales {
		sale := s.AffiliateSale
		sale.Date = s.Ago.before(now)
		data.affiliateSales = append(data.affiliateSales, sale)
	}
	for _, n := range file.Notifications {
		notification := n.Notification
		notification.Date = n.Ago.before(now)
		data.notifications = append(data.notifications, notification)
	}

	return data, nil
}

func loadTemplates() ([]repository.Template, error) {
	var templates []repository.Template
	if err := decodeYAML("seed/templates.yaml", &templates); err != nil {
		return nil, err
	}

	return templates, nil
}
