package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

func TestListLinks(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPhotoStoreWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT link FROM singles").
		WillReturnRows(pgxmock.NewRows([]string{"link"}).
			AddRow("https://photos.google.com/share/A/photo/1?key=K").
			AddRow("https://photos.google.com/share/A/photo/2?key=K"))

	links, err := store.ListLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://photos.google.com/share/A/photo/1?key=K",
		"https://photos.google.com/share/A/photo/2?key=K",
	}, links)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListLinksQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPhotoStoreWithPool(mock, "photos")
	require.NoError(t, err)

	boom := errors.New("relation does not exist")
	mock.ExpectQuery("SELECT link FROM photos").WillReturnError(boom)

	_, err = store.ListLinks(context.Background())
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPhotoReturnsID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPhotoStoreWithPool(mock, "singles")
	require.NoError(t, err)

	taken := int64(1690000000000)
	desc := "Sunset"
	rec := scraper.PhotoRecord{
		Link:           "https://photos.google.com/share/A/photo/1?key=K",
		Image:          "https://lh3.googleusercontent.com/abc",
		Width:          4000,
		Height:         3000,
		TakenTimestamp: &taken,
		Description:    &desc,
		Exif:           scraper.Exif{Make: "Canon", ISO: 200, Aperture: 2.8},
	}
	canon := "Canon"
	iso := int64(200)
	aperture := 2.8

	mock.ExpectQuery("INSERT INTO singles").
		WithArgs(
			rec.Link,
			rec.Image,
			rec.Width,
			rec.Height,
			rec.TakenTimestamp,
			(*int64)(nil),
			rec.Description,
			&canon,
			(*string)(nil),
			(*string)(nil),
			(*float64)(nil),
			&aperture,
			&iso,
			(*float64)(nil),
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("42"))

	id, err := store.InsertPhoto(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPhotoError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPhotoStoreWithPool(mock, "singles")
	require.NoError(t, err)

	boom := errors.New("duplicate key value violates unique constraint")
	mock.ExpectQuery("INSERT INTO singles").WithArgs(anyArgs(14)...).WillReturnError(boom)

	_, err = store.InsertPhoto(context.Background(), scraper.PhotoRecord{Link: "x"})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestTableNameValidation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPhotoStoreWithPool(mock, "singles; DROP TABLE singles")
	require.Error(t, err)
	_, err = NewPhotoStoreWithPool(nil, "singles")
	require.Error(t, err)
	_, err = NewPhotoStore(context.Background(), PhotoStoreConfig{})
	require.Error(t, err)
}
