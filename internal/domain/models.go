// Package domain defines the data model of the guardias tracker: the
// canonical absence record produced by every source adapter, the locally
// stored absences and cover assignments, and the merged teacher directory
// entries. Persisted types are mapped with GORM for the optional SQLite
// backing store.
package domain

import "time"

// Source tags the origin adapter of an absence record. The values double as
// the per-source keys of the panel summary.
type Source string

const (
	// SourceLocal marks records created through this service's own store.
	SourceLocal Source = "local"
	// SourceRemote marks records fetched from the sibling group's JSON API.
	SourceRemote Source = "remota"
	// SourceScript marks records fetched from the spreadsheet-backed script.
	SourceScript Source = "script"
	// SourceCSV marks records parsed from the published CSV export.
	SourceCSV Source = "csv"
)

// Sources lists all source tags in panel precedence order: local records
// first, then each remote source. The merge step concatenates adapter results
// in exactly this order.
var Sources = []Source{SourceLocal, SourceRemote, SourceScript, SourceCSV}

// AbsenceRecord is the canonical, post-normalization shape every adapter
// produces. Externally sourced records are rebuilt on every aggregation call,
// so their IDs are unique within one response but not stable across calls.
// CoverTeacher and CoverID are set by the reconciliation pass, never by an
// adapter.
type AbsenceRecord struct {
	ID           string  `json:"id"`
	Source       Source  `json:"origen"`
	Teacher      string  `json:"profesor"`
	Group        string  `json:"grupo"`
	PeriodStart  int     `json:"hora_inicio"`
	PeriodEnd    int     `json:"hora_fin"`
	Task         string  `json:"tarea"`
	External     bool    `json:"es_externo"`
	CoverTeacher *string `json:"guardia_asignada"`
	CoverID      *string `json:"guardia_id"`
	Date         string  `json:"fecha,omitempty"`
}

// Absence is a locally created absence held by the store. Unlike externally
// sourced records it has a real lifecycle: created by staff, listed by date,
// and removed by an explicit delete that cascades to its assignments.
//
// The GORM mapping is only exercised when the service runs with the SQLite
// backing store; the in-memory store holds the same struct for the process
// lifetime.
type Absence struct {
	ID          string    `json:"id"          gorm:"type:TEXT NOT NULL;primaryKey"`
	Teacher     string    `json:"profesor"    gorm:"column:profesor;type:TEXT NOT NULL"`
	Group       string    `json:"grupo"       gorm:"column:grupo;type:TEXT NOT NULL"`
	PeriodStart int       `json:"hora_inicio" gorm:"column:hora_inicio;type:INTEGER NOT NULL"`
	PeriodEnd   int       `json:"hora_fin"    gorm:"column:hora_fin;type:INTEGER NOT NULL"`
	Task        string    `json:"tarea"       gorm:"column:tarea;type:TEXT NOT NULL"`
	Date        string    `json:"fecha"       gorm:"column:fecha;type:TEXT NOT NULL;index"`
	CreatedAt   time.Time `json:"-"`
}

// TableName returns the database table name for Absence.
func (Absence) TableName() string { return "ausencias" }

// Record converts a stored absence into the canonical response shape.
func (a Absence) Record() AbsenceRecord {
	return AbsenceRecord{
		ID:          a.ID,
		Source:      SourceLocal,
		Teacher:     a.Teacher,
		Group:       a.Group,
		PeriodStart: a.PeriodStart,
		PeriodEnd:   a.PeriodEnd,
		Task:        a.Task,
		External:    false,
		Date:        a.Date,
	}
}

// Assignment links a cover teacher to an absence for one period. The store
// deliberately does not verify that AbsenceID refers to an existing absence;
// a dangling assignment is kept and simply never matches a record during
// reconciliation.
type Assignment struct {
	ID        string    `json:"id"              gorm:"type:TEXT NOT NULL;primaryKey"`
	AbsenceID string    `json:"ausencia_id"     gorm:"column:ausencia_id;type:TEXT NOT NULL;index"`
	Teacher   string    `json:"profesor_nombre" gorm:"column:profesor_nombre;type:TEXT NOT NULL"`
	Period    int       `json:"hora"            gorm:"column:hora;type:INTEGER NOT NULL"`
	Date      string    `json:"fecha"           gorm:"column:fecha;type:TEXT NOT NULL;index"`
	CreatedAt time.Time `json:"-"`
}

// TableName returns the database table name for Assignment.
func (Assignment) TableName() string { return "guardias" }

// Teacher is a directory row in the backing store. It feeds the local leg of
// the merged teacher directory and the available-teachers lookup.
type Teacher struct {
	ID        uint   `json:"id"        gorm:"primaryKey"`
	FirstName string `json:"nombre"    gorm:"column:nombre;type:TEXT NOT NULL"`
	LastName  string `json:"apellidos" gorm:"column:apellidos;type:TEXT NOT NULL"`
}

// TableName returns the database table name for Teacher.
func (Teacher) TableName() string { return "profesores" }

// FullName joins first and last name, tolerating an empty last name.
func (t Teacher) FullName() string {
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

// Group is a class or room a teacher can be absent from.
type Group struct {
	ID   uint   `json:"id"     gorm:"primaryKey"`
	Name string `json:"nombre" gorm:"column:nombre;type:TEXT NOT NULL"`
}

// TableName returns the database table name for Group.
func (Group) TableName() string { return "grupos" }

// TeacherProfile is one merged directory entry. Local rows keep their
// directory ids; externally sourced entries get a synthetic sequence number
// assigned at merge time, not stable across calls. Origin names the first
// source that produced the teacher.
type TeacherProfile struct {
	ID        int    `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellidos"`
	Origin    string `json:"origen"`
}
