package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"driftbacktest/internal/repository"
	"driftbacktest/internal/util"

	"github.com/stretchr/testify/require"
)

func writeScheduleFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func Test_LoadSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes weights per date and sorts", func(t *testing.T) {
		path := writeScheduleFile(t, `ticker,date,weight
B,2020-01-01,2
A,2020-01-01,2
A,2021-01-01,5
`)
		schedule, err := LoadSchedule(ctx, path)
		require.NoError(t, err)
		require.Len(t, schedule, 3)

		require.Equal(t, "A", schedule[0].Ticker)
		require.Equal(t, 0.5, schedule[0].Weight)
		require.Equal(t, "B", schedule[1].Ticker)
		require.Equal(t, 0.5, schedule[1].Weight)
		require.Equal(t, 1.0, schedule[2].Weight)
		require.Equal(t, []int{2020, 2021}, schedule.Years())
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		path := writeScheduleFile(t, `ticker,date,weight
A,01/02/2020,1
`)
		_, err := LoadSchedule(ctx, path)
		var validationErr DataValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("rejects missing weight column", func(t *testing.T) {
		path := writeScheduleFile(t, `ticker,date
A,2020-01-01
`)
		_, err := LoadSchedule(ctx, path)
		var validationErr DataValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("rejects negative weights", func(t *testing.T) {
		path := writeScheduleFile(t, `ticker,date,weight
A,2020-01-01,-0.5
B,2020-01-01,1.5
`)
		_, err := LoadSchedule(ctx, path)
		var validationErr DataValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("rejects empty schedules", func(t *testing.T) {
		path := writeScheduleFile(t, "ticker,date,weight\n")
		_, err := LoadSchedule(ctx, path)
		var validationErr DataValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func Test_RemoveDelistedTickers(t *testing.T) {
	ctx := context.Background()

	priceRepository := repository.NewMemoryPriceRepository()
	priceRepository.Set("A", util.NewDate(2020, 1, 1), 100)

	path := writeScheduleFile(t, `ticker,date,weight
A,2020-01-01,0.6
B,2020-01-01,0.4
`)
	schedule, err := LoadSchedule(ctx, path)
	require.NoError(t, err)

	filtered := RemoveDelistedTickers(ctx, schedule, priceRepository)
	require.Len(t, filtered, 1)
	require.Equal(t, "A", filtered[0].Ticker)
	require.Equal(t, 1.0, filtered[0].Weight)
}
