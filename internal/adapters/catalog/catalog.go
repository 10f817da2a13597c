// Package catalog serves offers from YAML site catalogs on disk. It is
// the default backend for the fetch_offers tool: one file per
// marketplace, loaded concurrently, searched by term overlap.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/forager/pkg/domain"
)

// siteFile is the on-disk shape of one marketplace catalog.
type siteFile struct {
	Site   string `yaml:"site"`
	Offers []struct {
		ID          string   `yaml:"id"`
		Title       string   `yaml:"title"`
		Price       float64  `yaml:"price"`
		Currency    string   `yaml:"currency"`
		Rating      *float64 `yaml:"rating"`
		ReviewCount *int     `yaml:"review_count"`
		SoldCount   *int     `yaml:"sold_count"`
		InStock     *bool    `yaml:"in_stock"`
	} `yaml:"offers"`
}

// Catalog holds the merged offer set, keyed by site.
type Catalog struct {
	mu    sync.RWMutex
	sites map[string][]domain.Offer
}

// Load reads every *.yaml file under dir, one goroutine per file.
func Load(ctx context.Context, dir string) (*Catalog, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files under %s", dir)
	}

	c := &Catalog{sites: make(map[string][]domain.Offer)}
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return c.loadFile(path)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	var sf siteFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if sf.Site == "" {
		sf.Site = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	offers := make([]domain.Offer, 0, len(sf.Offers))
	for _, e := range sf.Offers {
		inStock := true
		if e.InStock != nil {
			inStock = *e.InStock
		}
		offers = append(offers, domain.Offer{
			ID:          e.ID,
			Title:       e.Title,
			Price:       e.Price,
			Currency:    e.Currency,
			Rating:      e.Rating,
			ReviewCount: e.ReviewCount,
			SoldCount:   e.SoldCount,
			InStock:     inStock,
			Site:        sf.Site,
		})
	}

	c.mu.Lock()
	c.sites[sf.Site] = offers
	c.mu.Unlock()
	return nil
}

// Sites returns the loaded site names, sorted.
func (c *Catalog) Sites() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.sites))
	for name := range c.sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query narrows a catalog search.
type Query struct {
	Terms    []string
	Sites    []string
	MaxPrice *float64
	Limit    int
}

// Search returns in-stock offers matching at least one term, ordered
// by term overlap then price then ID. An empty term list matches
// everything.
func (c *Catalog) Search(q Query) []domain.Offer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wantSite := make(map[string]bool, len(q.Sites))
	for _, s := range q.Sites {
		wantSite[strings.ToLower(s)] = true
	}

	type scored struct {
		offer domain.Offer
		hits  int
	}
	var matches []scored
	for site, offers := range c.sites {
		if len(wantSite) > 0 && !wantSite[strings.ToLower(site)] {
			continue
		}
		for _, o := range offers {
			if !o.InStock {
				continue
			}
			if q.MaxPrice != nil && o.Price > *q.MaxPrice {
				continue
			}
			hits := termHits(o.Title, q.Terms)
			if len(q.Terms) > 0 && hits == 0 {
				continue
			}
			matches = append(matches, scored{offer: o, hits: hits})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].hits != matches[j].hits {
			return matches[i].hits > matches[j].hits
		}
		if matches[i].offer.Price != matches[j].offer.Price {
			return matches[i].offer.Price < matches[j].offer.Price
		}
		return matches[i].offer.ID < matches[j].offer.ID
	})

	out := make([]domain.Offer, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.offer)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

func termHits(title string, terms []string) int {
	lower := strings.ToLower(title)
	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			hits++
		}
	}
	return hits
}
