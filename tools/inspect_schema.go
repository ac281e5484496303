// Prints the columns and indexes GORM derives for the catalogue models, for
// checking column names against the fixture documents.
//
//	go run ./tools/inspect_schema.go [table...]
package main

import (
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/localnerve/archhub/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	only := os.Args[1:]
	migrator := db.Migrator()

	for _, model := range database.Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			log.Fatal(err)
		}
		table := stmt.Schema.Table
		if len(only) > 0 && !slices.Contains(only, table) {
			continue
		}

		fmt.Printf("\n%s (%s)\n", table, stmt.Schema.Name)

		columns, err := migrator.ColumnTypes(model)
		if err != nil {
			log.Fatal(err)
		}
		for _, col := range columns {
			nullable, _ := col.Nullable()
			pk, _ := col.PrimaryKey()
			fmt.Printf("  %-28s %-14s null=%-5t pk=%t\n", col.Name(), col.DatabaseTypeName(), nullable, pk)
		}

		indexes, err := migrator.GetIndexes(model)
		if err != nil {
			log.Fatal(err)
		}
		for _, idx := range indexes {
			unique, _ := idx.Unique()
			fmt.Printf("  index %s %v unique=%t\n", idx.Name(), idx.Columns(), unique)
		}
	}
}
