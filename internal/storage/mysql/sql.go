package mysql

const insertReviewsPrefix = "INSERT INTO app_reviews\n  (country, source_id, user_name, rating, title, review, reviewed_at)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  user_name   = COALESCE(VALUES(user_name), app_reviews.user_name),\n" +
	"  rating      = COALESCE(VALUES(rating), app_reviews.rating),\n" +
	"  title       = COALESCE(VALUES(title), app_reviews.title),\n" +
	"  review      = COALESCE(VALUES(review), app_reviews.review),\n" +
	"  reviewed_at = COALESCE(VALUES(reviewed_at), app_reviews.reviewed_at),\n" +
	"  updated_at  = CURRENT_TIMESTAMP\n"

const insertMissSQL = `
INSERT INTO ingest_misses (country, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const countByCountrySQL = `
SELECT country, COUNT(*)
FROM app_reviews
GROUP BY country
`
