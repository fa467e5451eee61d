package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type lobbyRow struct {
	ID    string `gorm:"primaryKey"`
	State string
}

func (lobbyRow) TableName() string { return "lobby_sessions" }

type playerRow struct {
	LobbyID  string `gorm:"primaryKey"`
	PlayerID string `gorm:"primaryKey"`
}

func (playerRow) TableName() string { return "lobby_players" }

// Gorm is the Postgres-backed Store.
type Gorm struct {
	db *gorm.DB
}

// OpenGorm connects to Postgres and migrates the lobby tables.
func OpenGorm(dsn string) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.AutoMigrate(&lobbyRow{}, &playerRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Create(ctx context.Context, sess LobbySession) error {
	row := lobbyRow{ID: sess.ID, State: string(sess.State)}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store: create lobby %s: %w", sess.ID, err)
	}
	return nil
}

func (g *Gorm) FindByID(ctx context.Context, id string) (LobbySession, error) {
	var row lobbyRow
	err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LobbySession{}, ErrNotFound
	}
	if err != nil {
		return LobbySession{}, fmt.Errorf("store: find lobby %s: %w", id, err)
	}
	players, err := g.roster(ctx, id)
	if err != nil {
		return LobbySession{}, err
	}
	return LobbySession{ID: row.ID, State: State(row.State), Players: players}, nil
}

func (g *Gorm) List(ctx context.Context) ([]LobbySession, error) {
	var rows []lobbyRow
	if err := g.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list lobbies: %w", err)
	}
	out := make([]LobbySession, 0, len(rows))
	for _, row := range rows {
		out = append(out, LobbySession{ID: row.ID, State: State(row.State)})
	}
	return out, nil
}

func (g *Gorm) CompareAndSetState(ctx context.Context, id string, expected, next State) (LobbySession, error) {
	res := g.db.WithContext(ctx).
		Model(&lobbyRow{}).
		Where("id = ? AND state = ?", id, string(expected)).
		Update("state", string(next))
	if res.Error != nil {
		return LobbySession{}, fmt.Errorf("store: transition lobby %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or another writer got there first.
		if _, err := g.FindByID(ctx, id); err != nil {
			return LobbySession{}, err
		}
		return LobbySession{}, ErrConflict
	}
	return g.FindByID(ctx, id)
}

func (g *Gorm) AppendPlayer(ctx context.Context, id, playerID string) error {
	row := playerRow{LobbyID: id, PlayerID: playerID}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("store: append player %s to lobby %s: %w", playerID, id, err)
	}
	return nil
}

func (g *Gorm) roster(ctx context.Context, id string) ([]string, error) {
	var rows []playerRow
	if err := g.db.WithContext(ctx).Order("player_id").Find(&rows, "lobby_id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("store: roster for lobby %s: %w", id, err)
	}
	players := make([]string, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.PlayerID)
	}
	return players, nil
}
