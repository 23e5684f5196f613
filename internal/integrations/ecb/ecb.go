package ecb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/finaurial/finance-tracker/internal/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrUnknownCurrency is returned when the base currency is not quoted by the feed
var ErrUnknownCurrency = errors.New("unknown currency")

const cacheTTL = time.Hour

// Rates are reference exchange rates for one day relative to Base
type Rates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Client reads the European Central Bank daily reference rates
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger

	mu        sync.Mutex
	cached    map[string]decimal.Decimal
	cachedDay string
	fetchedAt time.Time
}

// NewClient initializes a new ECB client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.ECBURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("ECB XML response: %d bytes", len(body))
	return body, nil
}

// parse extracts the euro-based rates and their date from the eurofxref document
func parse(raw []byte) (string, map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return "", nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	day := doc.FindElement("//Cube[@time]")
	if day == nil {
		return "", nil, fmt.Errorf("no rate date found in XML")
	}

	rates := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}
	for _, el := range day.FindElements("./Cube[@currency]") {
		value, err := decimal.NewFromString(el.SelectAttrValue("rate", ""))
		if err != nil {
			return "", nil, fmt.Errorf("failed to parse rate for %s: %w", el.SelectAttrValue("currency", "?"), err)
		}
		rates[el.SelectAttrValue("currency", "")] = value
	}
	if len(rates) == 1 {
		return "", nil, fmt.Errorf("no rate data found in XML")
	}
	return day.SelectAttrValue("time", ""), rates, nil
}

func (c *Client) euroRates(ctx context.Context) (string, map[string]decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < cacheTTL {
		return c.cachedDay, c.cached, nil
	}

	body, err := c.fetch(ctx)
	if err != nil {
		return "", nil, err
	}
	day, rates, err := parse(body)
	if err != nil {
		return "", nil, err
	}

	c.cached, c.cachedDay, c.fetchedAt = rates, day, time.Now()
	c.log.Infof("Retrieved %d ECB reference rates for %s", len(rates), day)
	return day, rates, nil
}

// Rates returns the latest reference rates expressed against base
func (c *Client) Rates(ctx context.Context, base string) (*Rates, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "EUR"
	}

	day, euro, err := c.euroRates(ctx)
	if err != nil {
		return nil, err
	}

	divisor, ok := euro[base]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, base)
	}

	out := &Rates{Base: base, Date: day, Rates: make(map[string]float64, len(euro))}
	for code, rate := range euro {
		out.Rates[code] = rate.DivRound(divisor, 6).InexactFloat64()
	}
	return out, nil
}
