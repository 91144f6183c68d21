package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// CartCache keeps the last known cart item count per session. The
// header badge reads it when the upstream cart fetch fails, so cart
// unavailability never breaks navigation chrome.
type CartCache struct{ DB *sqlx.DB }

func NewCartCache(db *sqlx.DB) *CartCache { return &CartCache{DB: db} }

func (c *CartCache) Put(sid string, count int) error {
	if count < 0 {
		count = 0
	}
	_, err := c.DB.Exec(`
		INSERT INTO cart_badges(session_id,item_count,updated_at)
		VALUES(?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
		  item_count=excluded.item_count, updated_at=CURRENT_TIMESTAMP`,
		sid, count)
	return err
}

func (c *CartCache) Count(sid string) (int, error) {
	var n int
	err := c.DB.Get(&n, `SELECT item_count FROM cart_badges WHERE session_id=?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
