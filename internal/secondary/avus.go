// Package secondary keeps the sample and study metadata on catalog entities
// in step with the ML warehouse. The warehouse is the source of truth; the
// updaters converge the managed attributes and leave everything else alone.
package secondary

import (
	"keel/internal/irods"
	"keel/internal/mlwh"
)

// ManagedSampleAttributes are the sample attributes the updaters own.
var ManagedSampleAttributes = []string{
	irods.AttrSampleID,
	irods.AttrSample,
	irods.AttrSampleSupplier,
	irods.AttrSampleDonorID,
	irods.AttrSampleAccession,
	irods.AttrSampleCommonName,
}

// ManagedStudyAttributes are the study attributes the updaters own.
var ManagedStudyAttributes = []string{
	irods.AttrStudyID,
	irods.AttrStudy,
	irods.AttrStudyTitle,
	irods.AttrStudyAccession,
}

// SampleAVUs builds the desired sample metadata for a warehouse sample.
// Absent warehouse values yield no AVU.
func SampleAVUs(sample mlwh.Sample) []irods.AVU {
	avus := []irods.AVU{{Attribute: irods.AttrSampleID, Value: sample.IDSampleLims}}
	avus = appendOptional(avus, irods.AttrSample, sample.Name)
	avus = appendOptional(avus, irods.AttrSampleSupplier, sample.SupplierName)
	avus = appendOptional(avus, irods.AttrSampleDonorID, sample.DonorID)
	avus = appendOptional(avus, irods.AttrSampleAccession, sample.AccessionNumber)
	avus = appendOptional(avus, irods.AttrSampleCommonName, sample.CommonName)
	irods.SortAVUs(avus)
	return avus
}

// StudyAVUs builds the desired study metadata for a warehouse study.
func StudyAVUs(study mlwh.Study) []irods.AVU {
	avus := []irods.AVU{{Attribute: irods.AttrStudyID, Value: study.IDStudyLims}}
	avus = appendOptional(avus, irods.AttrStudy, study.Name)
	avus = appendOptional(avus, irods.AttrStudyTitle, study.StudyTitle)
	avus = appendOptional(avus, irods.AttrStudyAccession, study.AccessionNumber)
	irods.SortAVUs(avus)
	return avus
}

func appendOptional(avus []irods.AVU, attribute string, value *string) []irods.AVU {
	if value == nil || *value == "" {
		return avus
	}
	return append(avus, irods.AVU{Attribute: attribute, Value: *value})
}

// AccessGroup names the catalog group that may read a study's data.
func AccessGroup(study mlwh.Study) string {
	if study.DataAccessGroup != nil && *study.DataAccessGroup != "" {
		return *study.DataAccessGroup
	}
	return "ss_" + study.IDStudyLims
}
