// store.go
//
// Architecture Hub application catalogue service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of archhub.
// archhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// archhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with archhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package catalogue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localnerve/archhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

var (
	ErrDuplicateID = errors.New("catalogue id already exists")
	ErrNotFound    = errors.New("application not found")
	ErrInvalidID   = errors.New("invalid catalogue id")
)

// Filter selects records by tier, status, vendor and domain. Empty criteria are ignored.
type Filter struct {
	Tier   string `json:"tier,omitempty"`
	Status string `json:"status,omitempty"`
	Vendor string `json:"vendor,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// Stats are the dashboard counters
type Stats struct {
	Total                  int64            `json:"total"`
	ProductionCount        int64            `json:"production"`
	ExternallyManagedCount int64            `json:"externallyManaged"`
	EliminateCount         int64            `json:"eliminateStrategy"`
	TierHistogram          map[string]int64 `json:"tierDistribution"`
	VendorHistogram        map[string]int64 `json:"vendorDistribution"`
}

// Metrics are the catalogue metrics page counters
type Metrics struct {
	TotalApplications  int64 `json:"totalApplications"`
	ProductionApps     int64 `json:"productionApps"`
	CriticalTier0      int64 `json:"criticalTier0"`
	SaaSApplications   int64 `json:"saasApplications"`
	CustomApplications int64 `json:"customApplications"`
	COTSApplications   int64 `json:"cotsApplications"`
}

// UniqueValues lists the distinct values present in the catalogue, sorted
type UniqueValues struct {
	Tiers    []string `json:"tiers"`
	Statuses []string `json:"statuses"`
	Vendors  []string `json:"vendors"`
	Domains  []string `json:"domains"`
	Types    []string `json:"types"`
}

// Store is the application catalogue. It is constructed once at bootstrap and
// shared by every handler.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a catalogue store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithTx returns a store bound to an open transaction
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, now: s.now}
}

// SetClock replaces the clock used for id generation and timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) query(ctx context.Context, name string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.ApplicationRecord{}).
		Clauses(hints.Comment("select", "archhub:catalogue:"+name))
}

// GetAll returns every record ordered by id
func (s *Store) GetAll(ctx context.Context) ([]models.ApplicationRecord, error) {
	var records []models.ApplicationRecord
	if err := s.query(ctx, "all").Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetByID returns the record with id, or nil when there is none
func (s *Store) GetByID(ctx context.Context, id string) (*models.ApplicationRecord, error) {
	var record models.ApplicationRecord
	err := s.query(ctx, "by-id").Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FilterBy returns the records matching every non-empty criterion. Tier is an
// exact match, status is case-insensitive, vendor and domain are
// case-insensitive substrings (domain over all three architecture levels).
func (s *Store) FilterBy(ctx context.Context, f Filter) ([]models.ApplicationRecord, error) {
	q := s.query(ctx, "filter")

	if f.Tier != "" {
		q = q.Where("current_tier = ?", f.Tier)
	}
	if f.Status != "" {
		q = q.Where("LOWER(lifecycle_status) = ?", strings.ToLower(f.Status))
	}

	var folds []func(*models.ApplicationRecord) bool
	if f.Vendor != "" {
		if foldsInSQL(f.Vendor) {
			q = q.Where(likeContains("vendor_name"), contains(f.Vendor))
		} else {
			vendor := strings.ToLower(f.Vendor)
			folds = append(folds, func(r *models.ApplicationRecord) bool {
				return containsFold(vendor, r.VendorName)
			})
		}
	}
	if f.Domain != "" {
		if foldsInSQL(f.Domain) {
			pattern := contains(f.Domain)
			q = q.Where(
				s.db.Where(likeContains("architecture_domain_l1"), pattern).
					Or(likeContains("architecture_domain_l2"), pattern).
					Or(likeContains("architecture_domain_l3"), pattern),
			)
		} else {
			domain := strings.ToLower(f.Domain)
			folds = append(folds, func(r *models.ApplicationRecord) bool {
				return containsFold(domain, r.ArchitectureDomainL1, r.ArchitectureDomainL2, r.ArchitectureDomainL3)
			})
		}
	}

	var records []models.ApplicationRecord
	if err := q.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	for _, keep := range folds {
		records = keepRecords(records, keep)
	}
	return records, nil
}

// Search does a case-insensitive substring match across name, product,
// vendor, common name and description. An empty query returns everything.
func (s *Store) Search(ctx context.Context, query string) ([]models.ApplicationRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.GetAll(ctx)
	}

	if !foldsInSQL(query) {
		records, err := s.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		lower := strings.ToLower(query)
		return keepRecords(records, func(r *models.ApplicationRecord) bool {
			return containsFold(lower, r.ApplicationName, r.ProductName, r.VendorName, r.ApplicationCommonName, r.Description)
		}), nil
	}

	pattern := contains(query)
	var records []models.ApplicationRecord
	err := s.query(ctx, "search").
		Where(likeContains("application_name"), pattern).
		Or(likeContains("product_name"), pattern).
		Or(likeContains("vendor_name"), pattern).
		Or(likeContains("application_common_name"), pattern).
		Or(likeContains("description"), pattern).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type bucket struct {
	Bucket string
	Total  int64
}

func (s *Store) histogram(ctx context.Context, column string) (map[string]int64, error) {
	var buckets []bucket
	err := s.query(ctx, "histogram").
		Select(column + " AS bucket, COUNT(*) AS total").
		Group(column).
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		out[b.Bucket] += b.Total
	}
	return out, nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	q := s.query(ctx, "count")
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

// Stats aggregates the dashboard counters. The tier histogram always sums to Total.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)

	if stats.Total, err = s.count(ctx, ""); err != nil {
		return nil, err
	}
	if stats.ProductionCount, err = s.count(ctx, "lifecycle_status = ?", models.StatusProduction); err != nil {
		return nil, err
	}
	if stats.ExternallyManagedCount, err = s.count(ctx, "externally_managed_service = ?", true); err != nil {
		return nil, err
	}
	if stats.EliminateCount, err = s.count(ctx, "strategy_short_term = ?", models.StrategyEliminate); err != nil {
		return nil, err
	}
	if stats.TierHistogram, err = s.histogram(ctx, "current_tier"); err != nil {
		return nil, err
	}
	if stats.VendorHistogram, err = s.histogram(ctx, "vendor_name"); err != nil {
		return nil, err
	}

	return &stats, nil
}

// Metrics returns the application type and criticality counters
func (s *Store) Metrics(ctx context.Context) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.TotalApplications, err = s.count(ctx, ""); err != nil {
		return nil, err
	}
	if m.ProductionApps, err = s.count(ctx, "lifecycle_status = ?", models.StatusProduction); err != nil {
		return nil, err
	}
	if m.CriticalTier0, err = s.count(ctx, "current_tier = ?", models.TierCritical); err != nil {
		return nil, err
	}

	types, err := s.histogram(ctx, "application_type")
	if err != nil {
		return nil, err
	}
	m.SaaSApplications = types["SaaS"]
	m.CustomApplications = types["Custom"]
	m.COTSApplications = types["COTS"]

	return &m, nil
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	if err := s.query(ctx, "distinct").Distinct().Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	sort.Strings(values)
	return values, nil
}

// UniqueValues returns the distinct tiers, statuses, vendors, L1 domains and types
func (s *Store) UniqueValues(ctx context.Context) (*UniqueValues, error) {
	var (
		uv  UniqueValues
		err error
	)

	if uv.Tiers, err = s.distinct(ctx, "current_tier"); err != nil {
		return nil, err
	}
	if uv.Statuses, err = s.distinct(ctx, "lifecycle_status"); err != nil {
		return nil, err
	}
	if uv.Vendors, err = s.distinct(ctx, "vendor_name"); err != nil {
		return nil, err
	}
	if uv.Domains, err = s.distinct(ctx, "architecture_domain_l1"); err != nil {
		return nil, err
	}
	if uv.Types, err = s.distinct(ctx, "application_type"); err != nil {
		return nil, err
	}

	return &uv, nil
}

// Add appends a record. The caller has validated it and assigned its id.
func (s *Store) Add(ctx context.Context, record *models.ApplicationRecord) (*models.ApplicationRecord, error) {
	if !IDPattern.MatchString(record.ID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, record.ID)
	}

	existing, err := s.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to add application %s: %w", record.ID, err)
	}
	return record, nil
}

// NextID generates an unused id: prefix followed by the last six digits of
// the millisecond clock, incremented until free.
func (s *Store) NextID(ctx context.Context, prefix string) (string, error) {
	const space = 1000000

	seed := s.now().UnixMilli() % space
	for i := int64(0); i < space; i++ {
		candidate := fmt.Sprintf("%s%06d", prefix, (seed+i)%space)
		if !IDPattern.MatchString(candidate) {
			return "", fmt.Errorf("%w: prefix %q does not produce a valid id", ErrInvalidID, prefix)
		}
		existing, err := s.GetByID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free catalogue id for prefix %s", prefix)
}

// '!' escapes LIKE wildcards on every supported dialect, sqlserver brackets included
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

func likeContains(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '!'"
}

func contains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// foldsInSQL reports whether LOWER() folds s correctly everywhere. sqlite
// only folds ASCII, so other input is matched in Go.
func foldsInSQL(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func containsFold(lowerQuery string, values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lowerQuery) {
			return true
		}
	}
	return false
}

func keepRecords(records []models.ApplicationRecord, keep func(*models.ApplicationRecord) bool) []models.ApplicationRecord {
	out := records[:0]
	for i := range records {
		if keep(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
