package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/charmap"

	"github.com/flemdev/portal-ppe/internal/apierror"
	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/store"
)

// Expected CSV files inside the seed directory. Missing files are skipped so
// a tenant can be seeded incrementally.
const (
	fileDemandingOrgs     = "demanding_orgs.csv"
	fileMunicipalities    = "municipalities.csv"
	fileEthnicities       = "ethnicities.csv"
	fileCourses           = "courses.csv"
	filePlacementStatuses = "placement_statuses.csv"
	fileHistoryTypes      = "history_types.csv"
)

func readFrame(path string) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded := charmap.ISO8859_1.NewDecoder().Reader(f)
	df := dataframe.ReadCSV(decoded, dataframe.WithDelimiter(';'), dataframe.WithLazyQuotes(true))
	if df.Err != nil {
		return nil, df.Err
	}
	return &df, nil
}

func getStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	for _, name := range df.Names() {
		if name == col {
			val := df.Col(col).Elem(rowIdx).String()
			if val == "NaN" {
				return ""
			}
			return val
		}
	}
	return ""
}

func seedTenant(ctx context.Context, tenant, dir string, storage *store.Storage, appLogger *logger.Logger) error {
	const component = "Seeder"

	seedNamed := func(file, label string, create func(ctx context.Context, tenant, name string) error) {
		path := filepath.Join(dir, file)
		df, err := readFrame(path)
		if err != nil {
			if os.IsNotExist(err) {
				appLogger.Info(component, "Skipping %s: file not present", file)
				return
			}
			appLogger.Error(component, "Failed to read %s: error=%v", file, err)
			return
		}

		inserted := 0
		for i := 0; i < df.Nrow(); i++ {
			name := getStr("nome", i, df)
			if name == "" {
				continue
			}
			if err := create(ctx, tenant, name); err != nil {
				appLogger.Warn(component, "Failed to seed %s %q: error=%v", label, name, err)
				continue
			}
			inserted++
		}
		appLogger.Info(component, "Seeded %s: tenant=%s inserted=%d", label, tenant, inserted)
	}

	seedDemandingOrgs(ctx, tenant, filepath.Join(dir, fileDemandingOrgs), storage, appLogger)

	seedNamed(fileMunicipalities, "municipality", func(ctx context.Context, tenant, name string) error {
		_, err := storage.References.CreateMunicipality(ctx, tenant, name)
		return err
	})
	seedNamed(fileEthnicities, "ethnicity", func(ctx context.Context, tenant, name string) error {
		_, err := storage.References.CreateEthnicity(ctx, tenant, name)
		return err
	})
	seedNamed(fileCourses, "training course", func(ctx context.Context, tenant, name string) error {
		_, err := storage.References.CreateCourse(ctx, tenant, name)
		return err
	})
	seedNamed(filePlacementStatuses, "placement status", func(ctx context.Context, tenant, name string) error {
		_, err := storage.References.CreatePlacementStatus(ctx, tenant, name)
		return err
	})

	seedHistoryTypes(ctx, tenant, filepath.Join(dir, fileHistoryTypes), storage, appLogger)

	return nil
}

func seedDemandingOrgs(ctx context.Context, tenant, path string, storage *store.Storage, appLogger *logger.Logger) {
	const component = "Seeder"

	df, err := readFrame(path)
	if err != nil {
		if os.IsNotExist(err) {
			appLogger.Info(component, "Skipping %s: file not present", fileDemandingOrgs)
			return
		}
		appLogger.Error(component, "Failed to read %s: error=%v", fileDemandingOrgs, err)
		return
	}

	inserted := 0
	for i := 0; i < df.Nrow(); i++ {
		name := getStr("nome", i, df)
		abbreviation := getStr("sigla", i, df)
		if name == "" || abbreviation == "" {
			continue
		}

		if _, err := storage.References.CreateDemandingOrg(ctx, tenant, name, abbreviation); err != nil {
			var apiErr *apierror.Error
			if errors.As(err, &apiErr) && apiErr.Kind == apierror.KindConflict {
				appLogger.Debug(component, "Demanding organization already seeded: %s", abbreviation)
				continue
			}
			appLogger.Warn(component, "Failed to seed demanding organization %q: error=%v", abbreviation, err)
			continue
		}
		inserted++
	}
	appLogger.Info(component, "Seeded demanding organizations: tenant=%s inserted=%d", tenant, inserted)
}

func seedHistoryTypes(ctx context.Context, tenant, path string, storage *store.Storage, appLogger *logger.Logger) {
	const component = "Seeder"

	df, err := readFrame(path)
	if err != nil {
		if os.IsNotExist(err) {
			appLogger.Info(component, "Skipping %s: file not present", fileHistoryTypes)
			return
		}
		appLogger.Error(component, "Failed to read %s: error=%v", fileHistoryTypes, err)
		return
	}

	inserted := 0
	for i := 0; i < df.Nrow(); i++ {
		name := getStr("nome", i, df)
		if name == "" {
			continue
		}
		confidential := strings.EqualFold(getStr("confidencial", i, df), "sim")

		if _, err := storage.References.CreateHistoryType(ctx, tenant, name, confidential); err != nil {
			appLogger.Warn(component, "Failed to seed history type %q: error=%v", name, err)
			continue
		}
		inserted++
	}
	appLogger.Info(component, "Seeded history types: tenant=%s inserted=%d", tenant, inserted)
}
