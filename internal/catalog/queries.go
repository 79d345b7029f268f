package catalog

import "github.com/dmitrymomot/reindexer/internal/extract"

// Producer queries return (title, url). An empty or NULL url falls back to
// the producer name.
var producerQueries = map[extract.Dialect]string{
	extract.DialectMySQL: `
		SELECT
			HERSTELLERNAME title, IF(STRCMP(URLSTRUKTUR, ''), URLSTRUKTUR, HERSTELLERNAME) url
		FROM
			hersteller
		ORDER BY
			anzahl DESC,
			HERSTELLERNAME ASC`,
	extract.DialectPostgres: ansiProducers,
	extract.DialectSQLite:   ansiProducers,
}

const ansiProducers = `
		SELECT
			HERSTELLERNAME AS title,
			CASE WHEN URLSTRUKTUR <> '' THEN URLSTRUKTUR ELSE HERSTELLERNAME END AS url
		FROM
			hersteller
		ORDER BY
			anzahl DESC,
			HERSTELLERNAME ASC`

// Product queries return (id, name, url, img, tests, score, points, keyword)
// for products that have a small first image.
var productQueries = map[extract.Dialect]string{
	extract.DialectMySQL: `
		SELECT
			pm.id AS productID, pm.PNAME AS productName, pm.PURL AS productUrl, pr.pfad AS img,
			pm.TESTS AS tests, pm.SCORE AS score, pa.punkte AS points, CONCAT(k.kategorieName, ", ",
			h.herstellerName) AS keyword
		FROM
			pname2pid_mapping  pm
		INNER JOIN
			produktbilder pr ON (pm.id = pr.produktID)
		INNER JOIN
			pname2pid_angebote pa ON (pa.produktID = pm.id)
		INNER JOIN
			kategorien k ON (k.id = pm.kategorieID)
		INNER JOIN
			hersteller h ON(h.id = pm.herstellerID)
		WHERE
			pr.pos = 1 AND
			pr.groesse = 'S'`,
	extract.DialectPostgres: ansiProducts,
	extract.DialectSQLite:   ansiProducts,
}

const ansiProducts = `
		SELECT
			pm.id AS productID, pm.PNAME AS productName, pm.PURL AS productUrl, pr.pfad AS img,
			pm.TESTS AS tests, pm.SCORE AS score, pa.punkte AS points,
			k.kategorieName || ', ' || h.herstellerName AS keyword
		FROM
			pname2pid_mapping pm
		INNER JOIN
			produktbilder pr ON (pm.id = pr.produktID)
		INNER JOIN
			pname2pid_angebote pa ON (pa.produktID = pm.id)
		INNER JOIN
			kategorien k ON (k.id = pm.kategorieID)
		INNER JOIN
			hersteller h ON (h.id = pm.herstellerID)
		WHERE
			pr.pos = 1 AND
			pr.groesse = 'S'`
