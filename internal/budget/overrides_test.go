package budget

import (
	"testing"

	"ordenate/internal/core"
)

func TestAmountFor(t *testing.T) {
	rows := []core.Override{
		{ItemID: 1, Year: 2025, Month: 3, Amount: core.Money{Cents: 120000}},
		{ItemID: 1, Year: 2025, Month: 4, Amount: core.Money{}},
	}

	if got := AmountFor(rows, 1, 2025, 3); got.Cents != 120000 {
		t.Errorf("got %d, want 120000", got.Cents)
	}
	if got := AmountFor(rows, 1, 2025, 4); !got.IsZero() {
		t.Errorf("explicit zero row: got %d, want 0", got.Cents)
	}
	if got := AmountFor(rows, 1, 2025, 5); !got.IsZero() {
		t.Errorf("missing row reads as zero, got %d", got.Cents)
	}
	if got := AmountFor(rows, 2, 2025, 3); !got.IsZero() {
		t.Errorf("other item: got %d, want 0", got.Cents)
	}
}

func TestReplaceYearKeepsOtherYears(t *testing.T) {
	rows := []core.Override{
		{ItemID: 1, Year: 2024, Month: 12, Amount: core.Money{Cents: 100}},
		{ItemID: 1, Year: 2025, Month: 1, Amount: core.Money{Cents: 200}},
		{ItemID: 2, Year: 2025, Month: 1, Amount: core.Money{Cents: 300}},
	}
	replacement := BuildYearRows(2025, map[int64][12]core.Money{
		1: {0: {Cents: 999}},
	})

	got := ReplaceYear(rows, 2025, replacement)

	if len(got) != 13 {
		t.Fatalf("got %d rows, want 13 (1 kept + 12 replacement)", len(got))
	}
	if got[0].Year != 2024 {
		t.Errorf("2024 row should survive, got %+v", got[0])
	}
	if a := AmountFor(got, 1, 2025, 1); a.Cents != 999 {
		t.Errorf("january replacement: got %d, want 999", a.Cents)
	}
	if a := AmountFor(got, 2, 2025, 1); !a.IsZero() {
		t.Errorf("old 2025 row for item 2 should be discarded, got %d", a.Cents)
	}
	// Zero months are real rows, not gaps.
	count := 0
	for _, o := range got {
		if o.ItemID == 1 && o.Year == 2025 {
			count++
		}
	}
	if count != 12 {
		t.Errorf("item 1 should carry 12 rows for 2025, got %d", count)
	}
}

func TestAppendIfAbsentKeepsExistingRows(t *testing.T) {
	item := core.Item{ID: 1, Name: "Luz", BaseAmount: core.Money{Cents: 4500}}
	rows := []core.Override{
		{ItemID: 1, Year: 2025, Month: 2, Amount: core.Money{Cents: 9999}},
	}
	periods := []core.Period{{Year: 2025, Month: 1}, {Year: 2025, Month: 2}, {Year: 2025, Month: 3}}

	got := AppendIfAbsent(rows, item, periods)

	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	if a := AmountFor(got, 1, 2025, 2); a.Cents != 9999 {
		t.Errorf("existing row must win: got %d, want 9999", a.Cents)
	}
	if a := AmountFor(got, 1, 2025, 1); a.Cents != 4500 {
		t.Errorf("seeded row: got %d, want base 4500", a.Cents)
	}
}

func TestMigrateFromBaseIsIdempotent(t *testing.T) {
	items := []core.Item{
		{ID: 1, Name: "Agua", BaseAmount: core.Money{Cents: 3000}, Periodicity: core.Monthly,
			ValidFrom: core.NewDate(2025, 1, 1), ValidTo: core.NewDate(2025, 3, 28)},
	}
	ref := core.Period{Year: 2025, Month: 6}

	rows, changed := MigrateFromBase(items, nil, ref)
	if !changed {
		t.Fatal("first migration should report changes")
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	again, changed := MigrateFromBase(items, rows, ref)
	if changed {
		t.Error("second migration should be a no-op")
	}
	if len(again) != 3 {
		t.Errorf("got %d rows after re-run, want 3", len(again))
	}
}

func TestMergeLegacy(t *testing.T) {
	rows := []core.Override{
		{ItemID: 1, Year: 2024, Month: 1, Amount: core.Money{Cents: 100}},
	}
	legacy := []core.Override{
		{ItemID: 1, Year: 2024, Month: 1, Amount: core.Money{Cents: 555}},
		{ItemID: 1, Year: 2023, Month: 12, Amount: core.Money{Cents: 777}},
	}

	got, changed := MergeLegacy(rows, legacy)
	if !changed {
		t.Fatal("expected merge to add the missing row")
	}
	if a := AmountFor(got, 1, 2024, 1); a.Cents != 100 {
		t.Errorf("current row must win over legacy: got %d", a.Cents)
	}
	if a := AmountFor(got, 1, 2023, 12); a.Cents != 777 {
		t.Errorf("legacy-only row should be merged: got %d", a.Cents)
	}

	_, changed = MergeLegacy(got, legacy)
	if changed {
		t.Error("re-merging the same rows should be a no-op")
	}
}

func TestDropItems(t *testing.T) {
	rows := []core.Override{
		{ItemID: 1, Year: 2025, Month: 1},
		{ItemID: 2, Year: 2025, Month: 1},
		{ItemID: 1, Year: 2025, Month: 2},
	}
	got := DropItems(rows, map[int64]struct{}{1: {}})
	if len(got) != 1 || got[0].ItemID != 2 {
		t.Errorf("expected only item 2 rows to remain, got %v", got)
	}
}
