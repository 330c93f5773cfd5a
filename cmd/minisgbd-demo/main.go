// Demo program: runs the fill / rollback / commit / crash-prep /
// crash-and-recover scenario end to end against a throwaway data file.
// Run: go run ./cmd/minisgbd-demo
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"minisgbd"
)

func main() {
	path := flag.String("db", "minisgbd-demo.db", "path to the demo data file")
	flag.Parse()

	for _, p := range []string{*path, *path + ".log", *path + ".checkpoint.json"} {
		os.Remove(p)
	}

	store, err := minisgbd.Open(*path)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	fmt.Println("database initialized empty")

	fill(store)
	rollback(store)
	persist(store)
	prepareCrash(store)
	crashAndRecover(store, *path)
}

func fill(store *minisgbd.Store) {
	fmt.Println("\n--- stage 1: fill ---")

	must(store.Begin())
	must(store.InsertRecord("Record_A"))
	must(store.Commit())
	fmt.Println("Record_A inserted and committed")

	must(store.Begin())
	must(store.InsertRecord("Record_B"))
	must(store.Commit())
	fmt.Println("Record_B inserted and committed")

	must(store.Checkpoint())
	fmt.Println("checkpoint run, data flushed to disk")

	a := must1(store.ReadRecord(0))
	b := must1(store.ReadRecord(1))
	fmt.Printf("read back: [0]=%q [1]=%q\n", a, b)
}

func rollback(store *minisgbd.Store) {
	fmt.Println("\n--- stage 2: rollback ---")

	before := must1(store.ReadRecord(0))
	fmt.Printf("Record_A before update: %q\n", before)

	must(store.Begin())
	must(store.UpdateRecord(0, "Record_A_MODIFIED"))
	fmt.Println("updated Record_A inside the transaction")
	must(store.Rollback())

	after := must1(store.ReadRecord(0))
	fmt.Printf("Record_A after rollback: %q\n", after)
	if after != before {
		log.Fatalf("rollback did not restore the before-image: got %q, want %q", after, before)
	}
}

func persist(store *minisgbd.Store) {
	fmt.Println("\n--- stage 3: persist ---")

	must(store.Begin())
	must(store.InsertRecord("Record_B_FINAL"))
	must(store.Commit())
	fmt.Println("Record_B_FINAL committed")
	must(store.Checkpoint())

	records := must1(store.Journal().Records())
	fmt.Printf("journal holds %d durable records\n", len(records))
}

func prepareCrash(store *minisgbd.Store) {
	fmt.Println("\n--- stage 4: prepare crash ---")

	must(store.Begin())
	must(store.InsertRecord("Record_C_GHOST"))
	fmt.Println("Record_C_GHOST inserted, transaction left open (no commit)")
}

func crashAndRecover(store *minisgbd.Store, path string) {
	fmt.Println("\n--- stage 5: crash and recover ---")

	store.Crash()
	fmt.Println("crash simulated: buffer pool discarded without saving")

	reopened, err := minisgbd.Open(path)
	if err != nil {
		log.Fatalf("reopen: %v", err)
	}
	fmt.Println("database reopened")

	must(reopened.Recover())
	fmt.Println("recovery complete: journal replayed from the last checkpoint")

	count := must1(reopened.RecordCount())
	fmt.Printf("record count after recovery: %d\n", count)
	for i := int64(0); i < count; i++ {
		fmt.Printf("  [%d] %s\n", i, must1(reopened.ReadRecord(i)))
	}

	if count != 3 {
		log.Fatalf("expected 3 records after recovery, got %d", count)
	}
	fmt.Println("\ndemo complete: Record_C_GHOST correctly absent, everything else persisted")

	must(reopened.Close())
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func must1[T any](v T, err error) T {
	must(err)
	return v
}
