package domain

import "testing"

func TestTableNames(t *testing.T) {
	if got := (Absence{}).TableName(); got != "ausencias" {
		t.Fatalf("Absence table = %q", got)
	}
	if got := (Assignment{}).TableName(); got != "guardias" {
		t.Fatalf("Assignment table = %q", got)
	}
	if got := (Teacher{}).TableName(); got != "profesores" {
		t.Fatalf("Teacher table = %q", got)
	}
	if got := (Group{}).TableName(); got != "grupos" {
		t.Fatalf("Group table = %q", got)
	}
	if got := (Idempotency{}).TableName(); got != "idempotency" {
		t.Fatalf("Idempotency table = %q", got)
	}
}

func TestSourcesPrecedenceOrder(t *testing.T) {
	want := []Source{SourceLocal, SourceRemote, SourceScript, SourceCSV}
	if len(Sources) != len(want) {
		t.Fatalf("Sources has %d entries; want %d", len(Sources), len(want))
	}
	for i, s := range want {
		if Sources[i] != s {
			t.Fatalf("Sources[%d] = %q; want %q", i, Sources[i], s)
		}
	}
}

func TestAbsenceRecord_Conversion(t *testing.T) {
	a := Absence{
		ID:          "local-1000",
		Teacher:     "Ana Martín",
		Group:       "1ºA",
		PeriodStart: 2,
		PeriodEnd:   3,
		Task:        "Lectura",
		Date:        "2024-05-10",
	}
	r := a.Record()

	if r.ID != "local-1000" || r.Source != SourceLocal {
		t.Fatalf("unexpected id/source: %+v", r)
	}
	if r.External {
		t.Fatalf("local records must not be external")
	}
	if r.CoverTeacher != nil || r.CoverID != nil {
		t.Fatalf("conversion must not set cover fields")
	}
	if r.PeriodStart != 2 || r.PeriodEnd != 3 || r.Date != "2024-05-10" {
		t.Fatalf("fields not carried over: %+v", r)
	}
}

func TestTeacherFullName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Ana", "Martín", "Ana Martín"},
		{"Carlos", "", "Carlos"},
	}
	for _, tc := range cases {
		tch := Teacher{FirstName: tc.first, LastName: tc.last}
		if got := tch.FullName(); got != tc.want {
			t.Errorf("FullName(%q,%q) = %q; want %q", tc.first, tc.last, got, tc.want)
		}
	}
}
