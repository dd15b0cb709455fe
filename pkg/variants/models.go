package variants

import (
	"encoding/json"
)

// StringList accepts a JSON string or an array of strings. MyVariant.info
// fields such as dbnsfp.genename flip between the two depending on how many
// transcripts a variant touches.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// First returns the first value, or "" when the list is empty.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Variant is a MyVariant.info variant document, reduced to the annotation
// sources the client renders. Unknown fields are ignored on decode.
type Variant struct {
	ID       string   `json:"_id"`
	Query    string   `json:"query,omitempty"`
	NotFound bool     `json:"notfound,omitempty"`
	DbSNP    *DbSNP   `json:"dbsnp,omitempty"`
	DbNSFP   *DbNSFP  `json:"dbnsfp,omitempty"`
	Clinvar  *Clinvar `json:"clinvar,omitempty"`
	Gnomad   *Gnomad  `json:"gnomad_genome,omitempty"`
	CADD     *CADD    `json:"cadd,omitempty"`
}

// DbSNP carries the dbSNP annotation source.
type DbSNP struct {
	RSID string `json:"rsid,omitempty"`
}

// DbNSFP carries the dbNSFP annotation source.
type DbNSFP struct {
	GeneName StringList `json:"genename,omitempty"`
	HGVSp    StringList `json:"hgvsp,omitempty"`
}

// Clinvar carries the ClinVar annotation source.
type Clinvar struct {
	RCV RCVList `json:"rcv,omitempty"`
}

// RCV is one ClinVar record.
type RCV struct {
	Accession            string `json:"accession,omitempty"`
	ClinicalSignificance string `json:"clinical_significance,omitempty"`
}

// RCVList accepts a single RCV object or an array of them.
type RCVList []RCV

// UnmarshalJSON implements json.Unmarshaler.
func (l *RCVList) UnmarshalJSON(data []byte) error {
	var one RCV
	if err := json.Unmarshal(data, &one); err == nil {
		*l = RCVList{one}
		return nil
	}
	var many []RCV
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = RCVList(many)
	return nil
}

// Gnomad carries gnomAD genome population frequencies.
type Gnomad struct {
	AF *AlleleFreq `json:"af,omitempty"`
}

// AlleleFreq is a gnomAD allele frequency block.
type AlleleFreq struct {
	AF float64 `json:"af,omitempty"`
}

// CADD carries CADD deleteriousness scores.
type CADD struct {
	Phred float64 `json:"phred,omitempty"`
}

// Gene returns the primary gene symbol, or "".
func (v *Variant) Gene() string {
	if v.DbNSFP == nil {
		return ""
	}
	return v.DbNSFP.GeneName.First()
}

// RSID returns the dbSNP identifier, or "".
func (v *Variant) RSID() string {
	if v.DbSNP == nil {
		return ""
	}
	return v.DbSNP.RSID
}

// ProteinChange returns the first protein-level HGVS notation, or "".
func (v *Variant) ProteinChange() string {
	if v.DbNSFP == nil {
		return ""
	}
	return v.DbNSFP.HGVSp.First()
}

// ClinicalSignificance returns the first ClinVar significance verdict, or "".
func (v *Variant) ClinicalSignificance() string {
	if v.Clinvar == nil || len(v.Clinvar.RCV) == 0 {
		return ""
	}
	return v.Clinvar.RCV[0].ClinicalSignificance
}

// GnomadAF returns the gnomAD genome allele frequency, if annotated.
func (v *Variant) GnomadAF() (float64, bool) {
	if v.Gnomad == nil || v.Gnomad.AF == nil {
		return 0, false
	}
	return v.Gnomad.AF.AF, true
}

// CADDPhred returns the CADD phred score, if annotated.
func (v *Variant) CADDPhred() (float64, bool) {
	if v.CADD == nil || v.CADD.Phred == 0 {
		return 0, false
	}
	return v.CADD.Phred, true
}
