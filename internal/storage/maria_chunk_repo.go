package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/annel0/voxel-world/internal/vec"
	_ "github.com/go-sql-driver/mysql"
)

// MariaChunkRepo реализует ChunkRepo для MariaDB/MySQL.
// Использует таблицу world_chunks с составным ключом (x, z).
type MariaChunkRepo struct {
	db *sql.DB
}

// NewMariaChunkRepo создает репозиторий чанков для MariaDB.
// Таблица создаётся автоматически, если её нет.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaChunkRepo(dsn string) (*MariaChunkRepo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaChunkRepo{db: db}
	if err := repo.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}

	return repo, nil
}

func (r *MariaChunkRepo) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS world_chunks (
			x          INT        NOT NULL,
			z          INT        NOT NULL,
			data       MEDIUMBLOB NOT NULL,
			updated_at TIMESTAMP  DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE  CURRENT_TIMESTAMP,
			PRIMARY KEY (x, z)
		) ENGINE=InnoDB
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы world_chunks: %w", err)
	}
	return nil
}

const mariaUpsertChunk = `
	INSERT INTO world_chunks (x, z, data)
	VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE
		data = VALUES(data),
		updated_at = CURRENT_TIMESTAMP
`

// Save сохраняет запись через INSERT ... ON DUPLICATE KEY UPDATE
func (r *MariaChunkRepo) Save(ctx context.Context, coord vec.Vec3, record []byte) error {
	if _, err := r.db.ExecContext(ctx, mariaUpsertChunk, coord.X, coord.Z, record); err != nil {
		return fmt.Errorf("ошибка сохранения чанка %d:%d: %w", coord.X, coord.Z, err)
	}
	return nil
}

// Load читает запись чанка
func (r *MariaChunkRepo) Load(ctx context.Context, coord vec.Vec3) ([]byte, bool, error) {
	query := `SELECT data FROM world_chunks WHERE x = ? AND z = ?`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, coord.X, coord.Z).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка загрузки чанка %d:%d: %w", coord.X, coord.Z, err)
	}
	return data, true, nil
}

// Delete удаляет запись чанка
func (r *MariaChunkRepo) Delete(ctx context.Context, coord vec.Vec3) error {
	query := `DELETE FROM world_chunks WHERE x = ? AND z = ?`

	if _, err := r.db.ExecContext(ctx, query, coord.X, coord.Z); err != nil {
		return fmt.Errorf("ошибка удаления чанка %d:%d: %w", coord.X, coord.Z, err)
	}
	return nil
}

// BatchSave сохраняет записи в одной транзакции
func (r *MariaChunkRepo) BatchSave(ctx context.Context, records map[vec.Vec3][]byte) error {
	if len(records) == 0 {
		return nil // Нечего сохранять
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() // Откат в случае ошибки

	stmt, err := tx.PrepareContext(ctx, mariaUpsertChunk)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for coord, record := range records {
		if _, err := stmt.ExecContext(ctx, coord.X, coord.Z, record); err != nil {
			return fmt.Errorf("ошибка сохранения чанка %d:%d в batch: %w", coord.X, coord.Z, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// List возвращает координаты всех сохранённых чанков
func (r *MariaChunkRepo) List(ctx context.Context) ([]vec.Vec3, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT x, z FROM world_chunks ORDER BY x, z`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка чанков: %w", err)
	}
	defer rows.Close()

	var coords []vec.Vec3
	for rows.Next() {
		var x, z int
		if err := rows.Scan(&x, &z); err != nil {
			return nil, fmt.Errorf("ошибка разбора строки: %w", err)
		}
		coords = append(coords, vec.New(x, 0, z))
	}
	return coords, rows.Err()
}

// Close закрывает соединение с базой данных
func (r *MariaChunkRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
