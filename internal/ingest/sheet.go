// Package ingest turns an uploaded beneficiary spreadsheet (CSV export,
// latin-1 encoded as Excel pt-BR produces it) into candidate rows for the
// import pipeline.
package ingest

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/charmap"

	"github.com/flemdev/portal-ppe/internal/importer"
)

// Recognized column headers, as the secretariat exports them.
const (
	colEnrollment            = "Matricula"
	colCPF                   = "CPF"
	colName                  = "Nome"
	colBirthDate             = "Data de Nascimento"
	colSchool                = "Colegio de Conclusao"
	colSex                   = "Sexo"
	colCourse                = "Curso de Formacao"
	colEthnicity             = "Raca/Cor"
	colResidenceMunicipality = "Municipio do Aluno"
	colPlacementMunicipality = "Municipio da Vaga"
	colDemandingOrg          = "Demandante"
	colPhone1                = "Telefone 01"
	colPhone2                = "Telefone 02"
	colConvocationDate       = "Data da Convocacao"
)

// ParseSheet reads one CSV sheet into candidates. Rows without a name are
// dropped; everything else is left raw for the pipeline to normalize.
func ParseSheet(r io.Reader) ([]importer.Candidate, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(r)
	df := dataframe.ReadCSV(decoded, dataframe.WithDelimiter(';'), dataframe.WithLazyQuotes(true))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse sheet: %w", df.Err)
	}

	candidates := make([]importer.Candidate, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		c := importer.Candidate{
			Enrollment:            getStr(colEnrollment, i, &df),
			CPF:                   getStr(colCPF, i, &df),
			Name:                  getStr(colName, i, &df),
			BirthDate:             getStr(colBirthDate, i, &df),
			SchoolOfOrigin:        getStr(colSchool, i, &df),
			Sex:                   getStr(colSex, i, &df),
			Course:                getStr(colCourse, i, &df),
			Ethnicity:             getStr(colEthnicity, i, &df),
			ResidenceMunicipality: getStr(colResidenceMunicipality, i, &df),
			PlacementMunicipality: getStr(colPlacementMunicipality, i, &df),
			DemandingOrg:          getStr(colDemandingOrg, i, &df),
			Phone1:                getStr(colPhone1, i, &df),
			Phone2:                getStr(colPhone2, i, &df),
			ConvocationDate:       getStr(colConvocationDate, i, &df),
		}
		if c.Name == "" {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func getStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	if !containsString(df.Names(), col) {
		return ""
	}
	val := df.Col(col).Elem(rowIdx).String()
	if val == "NaN" {
		return ""
	}
	return val
}
