// Seed imports bottles from an XLSX export into the database.
//
// Expected columns, in order: owner_id, brand, product_name, base_spirit,
// style, abv, volume_ml, quantity, status, price_cents, currency, location,
// tags (comma-separated). The first row is treated as a header.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sticctape/barkeep-backend/config"
	"github.com/sticctape/barkeep-backend/internal/app/model"
	"github.com/sticctape/barkeep-backend/internal/app/repository"
	"github.com/sticctape/barkeep-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	bottleRepo := repository.NewBottleRepository(db.GetDB())
	tagRepo := repository.NewTagRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total bottles to import: %d\n", len(rows))
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i, row := range rows {
		bottle, tags := parseRow(row)
		if bottle == nil {
			fmt.Printf("Skipping row %d: missing owner_id, brand or product_name\n", i+2)
			continue
		}

		if err := bottleRepo.Create(bottle); err != nil {
			log.Fatalf("Failed to insert bottle from row %d: %v", i+2, err)
		}
		for _, name := range tags {
			tag, err := tagRepo.FindOrCreate(bottle.OwnerID, name)
			if err != nil {
				log.Fatalf("Failed to upsert tag %q: %v", name, err)
			}
			if err := tagRepo.Link(bottle.ID, tag.ID); err != nil {
				log.Fatalf("Failed to link tag %q: %v", name, err)
			}
		}
		imported++
	}

	fmt.Printf("Imported %d bottles.\n", imported)
}

func readRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil // skip header
}

func parseRow(row []string) (*model.Bottle, []string) {
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	ownerID, brand, productName := col(0), col(1), col(2)
	if ownerID == "" || brand == "" || productName == "" {
		return nil, nil
	}

	bottle := &model.Bottle{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Brand:       brand,
		ProductName: productName,
		BaseSpirit:  col(3),
		Style:       col(4),
		Quantity:    model.DefaultQuantity,
		Status:      model.DefaultStatus,
		Currency:    model.DefaultCurrency,
		Location:    col(11),
	}

	if abv, err := strconv.ParseFloat(col(5), 64); err == nil {
		bottle.ABV = &abv
	}
	if vol, err := strconv.ParseFloat(col(6), 64); err == nil {
		bottle.VolumeML = &vol
	}
	if qty, err := strconv.Atoi(col(7)); err == nil && qty > 0 {
		bottle.Quantity = qty
	}
	if status := col(8); status != "" {
		bottle.Status = status
	}
	if price, err := strconv.ParseInt(col(9), 10, 64); err == nil {
		bottle.PriceCents = &price
	}
	if currency := col(10); currency != "" {
		bottle.Currency = currency
	}

	var tags []string
	for _, name := range strings.Split(col(12), ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return bottle, tags
}
