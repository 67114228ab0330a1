package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/artpromedia/aivo-qti/internal/qti/model"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutItem(ctx context.Context, id string, item *model.AssessmentItem) error {
	if id == "" {
		return errors.New("empty item id")
	}
	buf, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO qti_items (id,identifier,title,version,item_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET identifier=EXCLUDED.identifier, title=EXCLUDED.title, version=EXCLUDED.version, item_json=EXCLUDED.item_json`,
		id, item.Identifier, item.Title, string(item.Version), string(buf), time.Now().Unix())
	return err
}

func (s *SQLStore) GetItem(ctx context.Context, id string) (*model.AssessmentItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT item_json FROM qti_items WHERE id=$1`, id)
	var buf string
	if err := row.Scan(&buf); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var item model.AssessmentItem
	if err := json.Unmarshal([]byte(buf), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *SQLStore) ListItems(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM qti_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) PutResult(ctx context.Context, rec ResultRecord) error {
	if rec.ID == "" {
		return errors.New("empty result id")
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}
	buf, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO qti_results (id,item_id,score,max_score,result_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.ItemID, rec.Result.TotalScore, rec.Result.MaxScore, string(buf), rec.CreatedAt)
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (ResultRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,item_id,result_json,created_at FROM qti_results WHERE id=$1`, id)
	var rec ResultRecord
	var buf string
	if err := row.Scan(&rec.ID, &rec.ItemID, &buf, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResultRecord{}, ErrNotFound
		}
		return ResultRecord{}, err
	}
	if err := json.Unmarshal([]byte(buf), &rec.Result); err != nil {
		return ResultRecord{}, err
	}
	return rec, nil
}
