package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"electromart/internal/config"
	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/internal/store/services"
	"electromart/pkg/apperr"

	"gorm.io/gorm"
)

const adminEmail = "admin@admin.com"

// Seeder bootstraps the catalogue on startup: brands from CSV, one approved
// seller per brand, then products with their photos. It waits for the
// identity service to push the seed users before binding sellers.
type Seeder struct {
	db       *gorm.DB
	cfg      config.Seed
	requests *services.BrandRequestService
}

func NewSeeder(db *gorm.DB, cfg config.Seed, requests *services.BrandRequestService) *Seeder {
	return &Seeder{db: db, cfg: cfg, requests: requests}
}

// Run executes the full seed pass. Errors on individual rows are logged and
// skipped so one bad record cannot block startup.
func (s *Seeder) Run() error {
	if !s.cfg.Enabled {
		log.Println("Seeder disabled")
		return nil
	}

	if s.cfg.Reset {
		if err := s.reset(); err != nil {
			return fmt.Errorf("seed reset failed: %w", err)
		}
	}

	brands, err := s.seedBrands()
	if err != nil {
		return fmt.Errorf("brand seed failed: %w", err)
	}

	s.waitForUsers(expectedSellers(brands))
	s.bindSellers(brands)

	if err := s.seedProducts(brands); err != nil {
		return fmt.Errorf("product seed failed: %w", err)
	}
	return nil
}

// reset clears the catalogue tables. Synced users and brand requests are
// kept: they mirror identity state and review history.
func (s *Seeder) reset() error {
	if err := repositories.NewGORMProductPhotoRepository(s.db).DeleteAll(); err != nil {
		return err
	}
	if err := repositories.NewGORMProductRepository(s.db).DeleteAll(); err != nil {
		return err
	}
	if err := repositories.NewGORMBrandRepository(s.db).DeleteAll(); err != nil {
		return err
	}
	log.Println("Seed reset: cleared photos, products and brands")
	return nil
}

// seedBrands loads the brand CSV (name,slug,logo_url) and upserts each row
// by slug. A blank slug is derived from the name.
func (s *Seeder) seedBrands() ([]models.Brand, error) {
	rows, err := readCSV(s.cfg.BrandsCSV)
	if err != nil {
		return nil, err
	}

	brandRepo := repositories.NewGORMBrandRepository(s.db)
	var brands []models.Brand
	for i, row := range rows {
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			log.Printf("Skipping brand row %d: missing name", i+1)
			continue
		}
		brand := models.Brand{Name: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			brand.Slug = strings.ToLower(strings.TrimSpace(row[1]))
		}
		if brand.Slug == "" {
			brand.Slug = slugify(brand.Name)
		}
		if len(row) > 2 {
			brand.LogoURL = strings.TrimSpace(row[2])
		}
		if err := brandRepo.UpsertBySlug(&brand); err != nil {
			log.Printf("Skipping brand %s: %v", brand.Slug, err)
			continue
		}
		brands = append(brands, brand)
	}
	log.Printf("Seeded %d brands", len(brands))
	return brands, nil
}

// expectedSellers lists the identity accounts the seeder depends on: one
// seller per brand slug plus the admin.
func expectedSellers(brands []models.Brand) []string {
	emails := make([]string, 0, len(brands)+1)
	for _, brand := range brands {
		emails = append(emails, brand.Slug+"-seller@noreply.local")
	}
	return append(emails, adminEmail)
}

// waitForUsers polls the shadow table until every expected account has been
// synced or the timeout elapses. On timeout the seeder proceeds with
// whatever is present.
func (s *Seeder) waitForUsers(emails []string) {
	users := repositories.NewGORMSyncedUserRepository(s.db)
	deadline := time.Now().Add(s.cfg.UserWait)

	for {
		missing := 0
		for _, email := range emails {
			if _, err := users.FindByEmail(email); err != nil {
				missing++
			}
		}
		if missing == 0 {
			log.Printf("All %d seed users synced", len(emails))
			return
		}
		if time.Now().After(deadline) {
			log.Printf("Timed out waiting for user sync, %d of %d accounts missing", missing, len(emails))
			return
		}
		time.Sleep(s.cfg.UserPoll)
	}
}

// reviewer returns the id recorded as the approving admin. Falls back to the
// admin email when the admin account has not synced yet.
func (s *Seeder) reviewer() string {
	admin, err := repositories.NewGORMSyncedUserRepository(s.db).FindByEmail(adminEmail)
	if err != nil {
		return adminEmail
	}
	return admin.ID
}

// bindSellers walks every seeded brand and makes sure its seller account is
// bound through an approved brand request.
func (s *Seeder) bindSellers(brands []models.Brand) {
	users := repositories.NewGORMSyncedUserRepository(s.db)
	reviewedBy := s.reviewer()
	bound := 0

	for i := range brands {
		brand := &brands[i]
		email := brand.Slug + "-seller@noreply.local"
		seller, err := users.FindByEmail(email)
		if err != nil {
			log.Printf("Seller %s not synced, skipping brand %s", email, brand.Slug)
			continue
		}

		if seller.BrandID != nil {
			if _, err := s.requests.EnsureApprovedRecordFor(seller.ID, brand, reviewedBy); err != nil {
				log.Printf("Failed to repair approval record for %s: %v", email, err)
				continue
			}
			bound++
			continue
		}

		req, err := s.requests.Submit(seller.ID, brand.Name, brand.Slug, brand.LogoURL)
		if err != nil {
			// The brand row already exists, so Submit conflicts; repair instead.
			if errors.Is(err, apperr.ErrConflict) {
				if _, repairErr := s.requests.EnsureApprovedRecordFor(seller.ID, brand, reviewedBy); repairErr != nil {
					log.Printf("Failed to bind seller %s: %v", email, repairErr)
					continue
				}
				bound++
				continue
			}
			log.Printf("Failed to submit request for %s: %v", email, err)
			continue
		}
		if _, err := s.requests.Approve(req.ID, reviewedBy); err != nil {
			log.Printf("Failed to approve request for %s: %v", email, err)
			continue
		}
		bound++
	}
	log.Printf("Bound %d of %d brand sellers", bound, len(brands))
}

// seedProducts loads the product CSV
// (brand_slug,name,category,price,currency,description) and attaches photos
// found under <photos root>/<CATEGORY>/<NNN>/.
func (s *Seeder) seedProducts(brands []models.Brand) error {
	rows, err := readCSV(s.cfg.ProductsCSV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("No product CSV at %s, skipping product seed", s.cfg.ProductsCSV)
			return nil
		}
		return err
	}

	brandBySlug := make(map[string]string, len(brands))
	for _, brand := range brands {
		brandBySlug[brand.Slug] = brand.ID
	}

	products := repositories.NewGORMProductRepository(s.db)
	photos := repositories.NewGORMProductPhotoRepository(s.db)
	perCategory := make(map[string]int)
	seeded := 0

	for i, row := range rows {
		if len(row) < 4 {
			log.Printf("Skipping product row %d: want at least 4 columns, got %d", i+1, len(row))
			continue
		}
		slug := strings.ToLower(strings.TrimSpace(row[0]))
		brandID, ok := brandBySlug[slug]
		if !ok {
			log.Printf("Skipping product row %d: unknown brand %q", i+1, slug)
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil || price <= 0 {
			log.Printf("Skipping product row %d: bad price %q", i+1, row[3])
			continue
		}

		product := models.Product{
			BrandID:  brandID,
			Name:     strings.TrimSpace(row[1]),
			Category: strings.ToUpper(strings.TrimSpace(row[2])),
			Price:    price,
			Currency: "USD",
			Status:   models.ProductActive,
		}
		product.Slug = slugify(product.Name)
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			product.Currency = strings.ToUpper(strings.TrimSpace(row[4]))
		}
		if len(row) > 5 {
			product.Description = strings.TrimSpace(row[5])
		}
		if err := products.Create(&product); err != nil {
			log.Printf("Skipping product %s: %v", product.Name, err)
			continue
		}
		seeded++

		perCategory[product.Category]++
		s.attachPhotos(photos, &product, perCategory[product.Category])
	}
	log.Printf("Seeded %d products", seeded)
	return nil
}

// attachPhotos loads up to nine images for a product from
// <root>/<CATEGORY>/<NNN>/<n>.<ext>, where NNN is the product's position
// within its category. Missing folders and files are fine.
func (s *Seeder) attachPhotos(photos repositories.ProductPhotoRepository, product *models.Product, position int) {
	dir := filepath.Join(s.cfg.PhotosRoot, product.Category, fmt.Sprintf("%03d", position))
	attached := 0
	for n := 1; n <= 9; n++ {
		for ext, contentType := range map[string]string{"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png"} {
			path := filepath.Join(dir, fmt.Sprintf("%d.%s", n, ext))
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			photo := models.ProductPhoto{
				ProductID:   product.ID,
				Filename:    filepath.Base(path),
				ContentType: contentType,
				Data:        data,
				Position:    n,
				Primary:     n == 1,
			}
			if err := photos.Save(&photo); err != nil {
				log.Printf("Failed to store photo %s: %v", path, err)
				continue
			}
			attached++
			break
		}
	}
	if attached > 0 {
		log.Printf("Attached %d photos to %s", attached, product.Name)
	}
}

// readCSV reads a CSV file, tolerating ragged rows and skipping a header
// line when the first cell looks like one.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "name") {
		rows = rows[1:]
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "brand_slug") {
		rows = rows[1:]
	}
	return rows, nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
