package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cenovnik-bg/backend-cenovnik/internal/money"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedUsers(db)
	storeIDs := seedStores(db)
	productIDs := seedProducts(db)
	seedPrices(db, storeIDs, productIDs)

	log.Println("Seeding completed successfully!")
}

func seedUsers(db *sql.DB) {
	users := []struct {
		Email string
		Name  string
	}{
		{"demo@cenovnik.bg", "Демо Потребител"},
		{"ivan@example.bg", "Иван Петров"},
		{"maria@example.bg", "Мария Георгиева"},
		{"georgi@example.bg", "Георги Димитров"},
	}

	hash, err := argon2id.CreateHash("password123", argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	fmt.Println("Seeding Users...")
	for _, u := range users {
		_, err := db.Exec(`
			INSERT INTO users (email, password_hash, display_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO NOTHING;
		`, u.Email, hash, u.Name)
		if err != nil {
			log.Printf("Failed to seed user %s: %v", u.Email, err)
		}
	}
}

func seedStores(db *sql.DB) map[string]string {
	stores := []struct {
		Name    string
		Chain   string
		Address string
		City    string
		Color   string
	}{
		{"Kaufland Люлин", "Kaufland", "бул. Царица Йоана 15", "София", "#E10915"},
		{"Lidl Младост", "Lidl", "бул. Александър Малинов 51", "София", "#0050AA"},
		{"Billa Лозенец", "Billa", "бул. Черни връх 32", "София", "#FFD500"},
		{"Fantastico Център", "Fantastico", "бул. Витоша 90", "София", "#00A651"},
		{"Kaufland Тракия", "Kaufland", "бул. Освобождение 47", "Пловдив", "#E10915"},
		{"Lidl Център", "Lidl", "ул. Гладстон 1", "Пловдив", "#0050AA"},
	}

	fmt.Println("Seeding Stores...")
	ids := make(map[string]string)
	for _, s := range stores {
		var id string
		err := db.QueryRow("SELECT id FROM stores WHERE name = $1", s.Name).Scan(&id)
		if err == sql.ErrNoRows {
			err = db.QueryRow(`
				INSERT INTO stores (name, chain, address, city, primary_color, is_active)
				VALUES ($1, $2, $3, $4, $5, TRUE)
				RETURNING id;
			`, s.Name, s.Chain, s.Address, s.City, s.Color).Scan(&id)
		}
		if err != nil {
			log.Printf("Failed to seed store %s: %v", s.Name, err)
			continue
		}
		ids[s.Name] = id
	}
	return ids
}

func seedProducts(db *sql.DB) map[string]string {
	products := []struct {
		Barcode  string
		Name     string
		Brand    string
		Category string
	}{
		{"3800748011126", "Прясно мляко 3.6% 1л", "Верея", "Млечни продукти"},
		{"3800127001121", "Кисело мляко 3.6% 400г", "На баба", "Млечни продукти"},
		{"3800205572214", "Сирене краве 400г", "Маджаров", "Млечни продукти"},
		{"3800206633110", "Кашкавал Витоша 300г", "Маджаров", "Млечни продукти"},
		{"3800213512348", "Хляб Добруджа 650г", "Симид", "Хлебни изделия"},
		{"3800748025134", "Масло 125г", "Верея", "Млечни продукти"},
		{"3800020421123", "Яйца размер M 10бр", "Багира", "Яйца"},
		{"5449000000996", "Кока-Кола 2л", "Coca-Cola", "Напитки"},
		{"3800014268078", "Минерална вода Девин 1.5л", "Девин", "Напитки"},
		{"3800065711128", "Слънчогледово олио 1л", "Калиакра", "Основни храни"},
		{"3800061100216", "Захар кристална 1кг", "Захарни заводи", "Основни храни"},
		{"8690637705908", "Ориз жасмин 500г", "Крина", "Основни храни"},
		{"3800200300415", "Луканка Карлово 200г", "Орехите", "Колбаси"},
		{"3800232511217", "Банани 1кг", "", "Плодове и зеленчуци"},
		{"3800232511095", "Домати розови 1кг", "", "Плодове и зеленчуци"},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]string)
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (barcode, name, brand, category, status)
			VALUES ($1, $2, $3, $4, 'approved')
			ON CONFLICT (barcode) DO UPDATE SET
				name = EXCLUDED.name,
				brand = EXCLUDED.brand,
				category = EXCLUDED.category
			RETURNING id;
		`, p.Barcode, p.Name, p.Brand, p.Category).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
			continue
		}
		ids[p.Barcode] = id
	}
	return ids
}

// Prices are listed in BGN, the currency shoppers still see on most Bulgarian
// shelf labels. Roughly every third observation is stored as entered in EUR to
// exercise both entry paths.
func seedPrices(db *sql.DB, storeIDs, productIDs map[string]string) {
	prices := []struct {
		Barcode string
		Store   string
		BGN     string
	}{
		{"3800748011126", "Kaufland Люлин", "3.49"},
		{"3800748011126", "Lidl Младост", "3.29"},
		{"3800748011126", "Billa Лозенец", "3.69"},
		{"3800127001121", "Kaufland Люлин", "1.89"},
		{"3800127001121", "Lidl Младост", "1.79"},
		{"3800127001121", "Billa Лозенец", "1.99"},
		{"3800205572214", "Kaufland Люлин", "9.99"},
		{"3800205572214", "Lidl Младост", "10.49"},
		{"3800205572214", "Billa Лозенец", "10.29"},
		{"3800206633110", "Kaufland Люлин", "11.49"},
		{"3800206633110", "Billa Лозенец", "11.99"},
		{"3800213512348", "Kaufland Люлин", "2.19"},
		{"3800213512348", "Lidl Младост", "1.99"},
		{"3800213512348", "Billa Лозенец", "2.39"},
		{"3800213512348", "Fantastico Център", "2.29"},
		{"3800748025134", "Kaufland Люлин", "4.29"},
		{"3800748025134", "Lidl Младост", "3.99"},
		{"3800020421123", "Kaufland Люлин", "5.49"},
		{"3800020421123", "Billa Лозенец", "5.79"},
		{"5449000000996", "Kaufland Люлин", "4.99"},
		{"5449000000996", "Lidl Младост", "4.79"},
		{"5449000000996", "Fantastico Център", "5.19"},
		{"3800014268078", "Kaufland Люлин", "1.09"},
		{"3800014268078", "Lidl Младост", "0.99"},
		{"3800014268078", "Billa Лозенец", "1.19"},
		{"3800065711128", "Kaufland Люлин", "5.29"},
		{"3800065711128", "Lidl Младост", "4.99"},
		{"3800061100216", "Kaufland Люлин", "2.89"},
		{"3800061100216", "Fantastico Център", "2.99"},
		{"8690637705908", "Billa Лозенец", "3.79"},
		{"3800200300415", "Kaufland Люлин", "8.99"},
		{"3800200300415", "Fantastico Център", "9.49"},
		{"3800232511217", "Kaufland Люлин", "2.99"},
		{"3800232511217", "Lidl Младост", "2.79"},
		{"3800232511217", "Billa Лозенец", "3.19"},
		{"3800232511095", "Kaufland Люлин", "4.49"},
		{"3800232511095", "Fantastico Център", "3.99"},
	}

	fmt.Println("Seeding Prices...")
	for i, pr := range prices {
		productID, ok := productIDs[pr.Barcode]
		if !ok {
			log.Printf("Missing product for barcode %s", pr.Barcode)
			continue
		}
		storeID, ok := storeIDs[pr.Store]
		if !ok {
			log.Printf("Missing store %s", pr.Store)
			continue
		}

		bgn, err := decimal.NewFromString(pr.BGN)
		if err != nil {
			log.Printf("Bad price %q for %s: %v", pr.BGN, pr.Barcode, err)
			continue
		}
		eur, err := money.ToEUR(bgn, money.CurrencyBGN)
		if err != nil {
			log.Printf("Failed to convert %s BGN: %v", pr.BGN, err)
			continue
		}

		entered := bgn
		currency := money.CurrencyBGN
		if i%3 == 0 {
			entered = eur
			currency = money.CurrencyEUR
		}

		_, err = db.Exec(`
			INSERT INTO product_prices (product_id, store_id, price_eur, price_entered, currency_entered, status)
			VALUES ($1, $2, $3, $4, $5, 'approved');
		`, productID, storeID, eur.StringFixed(2), entered.StringFixed(2), currency)
		if err != nil {
			log.Printf("Failed to seed price for %s at %s: %v", pr.Barcode, pr.Store, err)
		}
	}
}
