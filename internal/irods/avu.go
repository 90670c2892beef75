package irods

import "sort"

// Well-known metadata attributes used by the maintenance operations.
const (
	AttrMD5              = "md5"
	AttrType             = "type"
	AttrCreated          = "dcterms:created"
	AttrCreator          = "dcterms:creator"
	AttrPublisher        = "dcterms:publisher"
	AttrModified         = "dcterms:modified"
	AttrSampleID         = "sample_id"
	AttrSample           = "sample"
	AttrSampleSupplier   = "sample_supplier_name"
	AttrSampleDonorID    = "sample_donor_id"
	AttrSampleAccession  = "sample_accession_number"
	AttrSampleCommonName = "sample_common_name"
	AttrConsentWithdrawn = "sample_consent_withdrawn"
	AttrStudyID          = "study_id"
	AttrStudy            = "study"
	AttrStudyTitle       = "study_title"
	AttrStudyAccession   = "study_accession_number"
	AttrCopyConfirmedMD5 = "ebi_sub_md5"

	AttrExperimentName = "ont:experiment_name"
	AttrInstrumentSlot = "ont:instrument_slot"
	AttrFlowcellID     = "ont:flowcell_id"
	AttrTagIdentifier  = "ont:tag_identifier"
)

// SortAVUs orders AVUs by attribute, then value, then units.
func SortAVUs(avus []AVU) {
	sort.Slice(avus, func(i, j int) bool {
		if avus[i].Attribute != avus[j].Attribute {
			return avus[i].Attribute < avus[j].Attribute
		}
		if avus[i].Value != avus[j].Value {
			return avus[i].Value < avus[j].Value
		}
		return avus[i].Units < avus[j].Units
	})
}

// DiffAVUs compares the current AVUs against the desired set for the given
// managed attributes and returns the additions and removals needed to converge.
// Attributes outside the managed set are left untouched.
func DiffAVUs(current, desired []AVU, managed []string) (add, remove []AVU) {
	managedSet := make(map[string]struct{}, len(managed))
	for _, attribute := range managed {
		managedSet[attribute] = struct{}{}
	}

	currentSet := make(map[AVU]struct{}, len(current))
	for _, avu := range current {
		if _, ok := managedSet[avu.Attribute]; ok {
			currentSet[avu] = struct{}{}
		}
	}
	desiredSet := make(map[AVU]struct{}, len(desired))
	for _, avu := range desired {
		if _, ok := managedSet[avu.Attribute]; ok {
			desiredSet[avu] = struct{}{}
		}
	}

	for avu := range desiredSet {
		if _, ok := currentSet[avu]; !ok {
			add = append(add, avu)
		}
	}
	for avu := range currentSet {
		if _, ok := desiredSet[avu]; !ok {
			remove = append(remove, avu)
		}
	}

	SortAVUs(add)
	SortAVUs(remove)
	return add, remove
}
