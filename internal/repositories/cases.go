package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/detectivequest/internal/casefile"
	"github.com/myrjola/detectivequest/internal/errors"
	"github.com/myrjola/detectivequest/internal/models"
	"github.com/myrjola/detectivequest/internal/sqlite"
)

var ErrCaseNotFound = errors.NewSentinel("case not found")

// CaseRepository stores imported case files so that they can be played by id.
type CaseRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(dbs *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		dbs:    dbs,
		logger: logger.With("source", "CaseRepository"),
	}
}

type roomRow struct {
	models.Room
	Position int `db:"position"`
}

type suspectRow struct {
	Name   string `db:"name"`
	Motive string `db:"motive"`
}

type clueRow struct {
	Suspect string `db:"suspect"`
	Clue    string `db:"clue"`
}

// Save stores c, replacing any case with the same id.
func (r *CaseRepository) Save(ctx context.Context, c *casefile.Case) error {
	caseAttr := slog.String("case", c.ID)
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction", caseAttr)
	}
	defer func() {
		if err = tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			err = errors.Wrap(err, "rollback transaction")
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(err))
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, c.ID); err != nil {
		return errors.Wrap(err, "delete previous case", caseAttr)
	}
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO cases (id, title, synopsis, entry) VALUES (:id, :title, :synopsis, :entry)`, c.Case); err != nil {
		return errors.Wrap(err, "insert case", caseAttr)
	}

	for i, room := range c.Rooms {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO rooms (case_id, position, name, clue, left_room, right_room) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, i, room.Name, room.Clue, room.Left, room.Right); err != nil {
			return errors.Wrap(err, "insert room", caseAttr, slog.String("room", room.Name))
		}
	}

	for i, suspect := range c.Suspects {
		suspectAttr := slog.String("suspect", suspect.Name)
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO suspects (case_id, position, name, motive) VALUES (?, ?, ?, ?)`,
			c.ID, i, suspect.Name, suspect.Motive); err != nil {
			return errors.Wrap(err, "insert suspect", caseAttr, suspectAttr)
		}
		for j, clue := range suspect.Clues {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO suspect_clues (case_id, suspect, position, clue) VALUES (?, ?, ?, ?)`,
				c.ID, suspect.Name, j, clue); err != nil {
				return errors.Wrap(err, "insert clue", caseAttr, suspectAttr, slog.String("clue", clue))
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction", caseAttr)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "saved case", caseAttr,
		slog.Int("rooms", len(c.Rooms)), slog.Int("suspects", len(c.Suspects)))
	return nil
}

// Get loads and validates the case with the given id. It returns ErrCaseNotFound when there is none.
func (r *CaseRepository) Get(ctx context.Context, id string) (*casefile.Case, error) {
	var (
		m        models.Case
		rooms    []roomRow
		suspects []suspectRow
		clues    []clueRow
		err      error
		caseAttr = slog.String("case", id)
	)

	if err = r.dbs.ReadOnly.GetContext(ctx, &m,
		`SELECT id, title, synopsis, entry FROM cases WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrCaseNotFound, "read case", caseAttr)
		}
		return nil, errors.Wrap(err, "read case", caseAttr)
	}

	if err = r.dbs.ReadOnly.SelectContext(ctx, &rooms,
		`SELECT position, name, clue, left_room, right_room FROM rooms WHERE case_id = ? ORDER BY position`,
		id); err != nil {
		return nil, errors.Wrap(err, "read rooms", caseAttr)
	}
	m.Rooms = make([]models.Room, len(rooms))
	for i, row := range rooms {
		m.Rooms[i] = row.Room
	}

	if err = r.dbs.ReadOnly.SelectContext(ctx, &suspects,
		`SELECT name, motive FROM suspects WHERE case_id = ? ORDER BY position`, id); err != nil {
		return nil, errors.Wrap(err, "read suspects", caseAttr)
	}
	if err = r.dbs.ReadOnly.SelectContext(ctx, &clues,
		`SELECT suspect, clue FROM suspect_clues WHERE case_id = ? ORDER BY suspect, position`, id); err != nil {
		return nil, errors.Wrap(err, "read clues", caseAttr)
	}
	cluesBySuspect := make(map[string][]string, len(suspects))
	for _, row := range clues {
		cluesBySuspect[row.Suspect] = append(cluesBySuspect[row.Suspect], row.Clue)
	}
	m.Suspects = make([]models.Suspect, len(suspects))
	for i, row := range suspects {
		m.Suspects[i] = models.Suspect{Name: row.Name, Motive: row.Motive, Clues: cluesBySuspect[row.Name]}
	}

	c, err := casefile.FromModel(m)
	if err != nil {
		return nil, errors.Wrap(err, "validate stored case", caseAttr)
	}
	return c, nil
}

// List returns a summary of every stored case ordered by id.
func (r *CaseRepository) List(ctx context.Context) ([]models.CaseSummary, error) {
	var summaries []models.CaseSummary
	stmt := `SELECT c.id,
       c.title,
       (SELECT COUNT(*) FROM rooms r WHERE r.case_id = c.id)    AS rooms,
       (SELECT COUNT(*) FROM suspects s WHERE s.case_id = c.id) AS suspects
FROM cases c
ORDER BY c.id`
	if err := sqlx.SelectContext(ctx, r.dbs.ReadOnly, &summaries, stmt); err != nil {
		return nil, errors.Wrap(err, "list cases")
	}
	return summaries, nil
}

// Delete removes the case with the given id. It returns ErrCaseNotFound when there is none.
func (r *CaseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete case", slog.String("case", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "count deleted cases", slog.String("case", id))
	}
	if n == 0 {
		return errors.Wrap(ErrCaseNotFound, "delete case", slog.String("case", id))
	}
	return nil
}
