package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"driftbacktest/internal/domain"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func Test_MemoryPriceRepository_Get(t *testing.T) {
	repo := NewMemoryPriceRepository()
	repo.Set("AAPL", date(2020, 1, 3), 100)

	t.Run("exact day", func(t *testing.T) {
		price, err := repo.Get("AAPL", date(2020, 1, 3))
		require.NoError(t, err)
		require.Equal(t, 100.0, price)
	})

	t.Run("resolves forward within the window", func(t *testing.T) {
		price, err := repo.Get("AAPL", date(2019, 12, 27))
		require.NoError(t, err)
		require.Equal(t, 100.0, price)
	})

	t.Run("fails beyond the window", func(t *testing.T) {
		_, err := repo.Get("AAPL", date(2019, 12, 26))
		require.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("never resolves backward", func(t *testing.T) {
		_, err := repo.Get("AAPL", date(2020, 1, 4))
		require.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		_, err := repo.Get("MSFT", date(2020, 1, 3))
		require.ErrorIs(t, err, ErrPriceUnavailable)
	})
}

func Test_PriceRepository_Get(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo, err := NewPriceRepository(db)
	require.NoError(t, err)

	err = repo.Add([]domain.AssetPrice{
		{Symbol: "AAPL", Date: date(2020, 1, 3), Price: 100},
		{Symbol: "AAPL", Date: date(2020, 1, 6), Price: 104},
		{Symbol: "MSFT", Date: date(2020, 1, 3), Price: 50},
	})
	require.NoError(t, err)

	t.Run("picks the earliest close in the window", func(t *testing.T) {
		price, err := repo.Get("AAPL", date(2020, 1, 1))
		require.NoError(t, err)
		require.Equal(t, 100.0, price)
	})

	t.Run("skips to the next close after a gap", func(t *testing.T) {
		price, err := repo.Get("AAPL", date(2020, 1, 4))
		require.NoError(t, err)
		require.Equal(t, 104.0, price)
	})

	t.Run("fails outside the window", func(t *testing.T) {
		_, err := repo.Get("MSFT", date(2020, 1, 20))
		require.True(t, errors.Is(err, ErrPriceUnavailable))
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		err := repo.Add([]domain.AssetPrice{
			{Symbol: "MSFT", Date: date(2020, 1, 3), Price: 55},
		})
		require.NoError(t, err)

		price, err := repo.Get("MSFT", date(2020, 1, 2))
		require.NoError(t, err)
		require.Equal(t, 55.0, price)
	})
}
