package mlwh

import "time"

// Platform enumerates sequencing platform values for
// seq_product_irods_locations.seq_platform_name.
type Platform string

const (
	PlatformIllumina Platform = "Illumina"
	PlatformONT      Platform = "ONT"
	PlatformPacBio   Platform = "PacBio"
)

// Valid reports whether the platform is one of the known values.
func (p Platform) Valid() bool {
	switch p {
	case PlatformIllumina, PlatformONT, PlatformPacBio:
		return true
	}
	return false
}

// Sample mapped from table <sample>.
type Sample struct {
	IDSampleTmp                int32      `gorm:"column:id_sample_tmp;primaryKey;autoIncrement"`
	IDLims                     string     `gorm:"column:id_lims"`
	IDSampleLims               string     `gorm:"column:id_sample_lims"`
	Created                    time.Time  `gorm:"column:created"`
	LastUpdated                time.Time  `gorm:"column:last_updated"`
	RecordedAt                 time.Time  `gorm:"column:recorded_at"`
	ConsentWithdrawn           int32      `gorm:"column:consent_withdrawn"`
	Name                       *string    `gorm:"column:name"`
	Organism                   *string    `gorm:"column:organism"`
	AccessionNumber            *string    `gorm:"column:accession_number"`
	CommonName                 *string    `gorm:"column:common_name"`
	Cohort                     *string    `gorm:"column:cohort"`
	SangerSampleID             *string    `gorm:"column:sanger_sample_id"`
	SupplierName               *string    `gorm:"column:supplier_name"`
	PublicName                 *string    `gorm:"column:public_name"`
	DonorID                    *string    `gorm:"column:donor_id"`
	DateOfConsentWithdrawn     *time.Time `gorm:"column:date_of_consent_withdrawn"`
	MarkedAsConsentWithdrawnBy *string    `gorm:"column:marked_as_consent_withdrawn_by"`
	UUIDSampleLims             string     `gorm:"column:uuid_sample_lims"`
}

func (Sample) TableName() string { return "sample" }

// Study mapped from table <study>.
type Study struct {
	IDStudyTmp              int32     `gorm:"column:id_study_tmp;primaryKey;autoIncrement"`
	IDLims                  string    `gorm:"column:id_lims"`
	IDStudyLims             string    `gorm:"column:id_study_lims"`
	Created                 time.Time `gorm:"column:created"`
	LastUpdated             time.Time `gorm:"column:last_updated"`
	RecordedAt              time.Time `gorm:"column:recorded_at"`
	Name                    *string   `gorm:"column:name"`
	AccessionNumber         *string   `gorm:"column:accession_number"`
	Description             *string   `gorm:"column:description"`
	ContainsHumanDNA        int32     `gorm:"column:contains_human_dna"`
	ContaminatedHumanDNA    int32     `gorm:"column:contaminated_human_dna"`
	RemoveXAndAutosomes     int32     `gorm:"column:remove_x_and_autosomes"`
	SeparateYChromosomeData int32     `gorm:"column:separate_y_chromosome_data"`
	ENAProjectID            *string   `gorm:"column:ena_project_id"`
	StudyTitle              *string   `gorm:"column:study_title"`
	StudyVisibility         *string   `gorm:"column:study_visibility"`
	EGADACAccessionNumber   *string   `gorm:"column:ega_dac_accession_number"`
	DataAccessGroup         *string   `gorm:"column:data_access_group"`
}

func (Study) TableName() string { return "study" }

// IseqFlowcell mapped from table <iseq_flowcell>.
type IseqFlowcell struct {
	IDIseqFlowcellTmp int32     `gorm:"column:id_iseq_flowcell_tmp;primaryKey;autoIncrement"`
	LastUpdated       time.Time `gorm:"column:last_updated"`
	RecordedAt        time.Time `gorm:"column:recorded_at"`
	IDSampleTmp       int32     `gorm:"column:id_sample_tmp"`
	IDLims            string    `gorm:"column:id_lims"`
	IDFlowcellLims    string    `gorm:"column:id_flowcell_lims"`
	Position          int32     `gorm:"column:position"`
	EntityType        string    `gorm:"column:entity_type"`
	EntityIDLims      string    `gorm:"column:entity_id_lims"`
	IDPoolLims        string    `gorm:"column:id_pool_lims"`
	IDStudyTmp        *int32    `gorm:"column:id_study_tmp"`
	ManualQC          *int32    `gorm:"column:manual_qc"`
	TagIndex          *int32    `gorm:"column:tag_index"`
	PipelineIDLims    *string   `gorm:"column:pipeline_id_lims"`
	IDLibraryLims     *string   `gorm:"column:id_library_lims"`
	PrimerPanel       *string   `gorm:"column:primer_panel"`

	Sample Sample `gorm:"foreignKey:IDSampleTmp;references:IDSampleTmp"`
	Study  Study  `gorm:"foreignKey:IDStudyTmp;references:IDStudyTmp"`
}

func (IseqFlowcell) TableName() string { return "iseq_flowcell" }

// IseqProductMetrics mapped from table <iseq_product_metrics>.
type IseqProductMetrics struct {
	IDIseqPrMetricsTmp int32      `gorm:"column:id_iseq_pr_metrics_tmp;primaryKey;autoIncrement"`
	IDIseqProduct      string     `gorm:"column:id_iseq_product"`
	LastChanged        *time.Time `gorm:"column:last_changed"`
	IDIseqFlowcellTmp  *int32     `gorm:"column:id_iseq_flowcell_tmp"`
	IDRun              *int32     `gorm:"column:id_run"`
	Position           *int32     `gorm:"column:position"`
	TagIndex           *int32     `gorm:"column:tag_index"`
	QC                 *int32     `gorm:"column:qc"`

	IseqFlowcell *IseqFlowcell `gorm:"foreignKey:IDIseqFlowcellTmp;references:IDIseqFlowcellTmp"`
}

func (IseqProductMetrics) TableName() string { return "iseq_product_metrics" }

// OseqFlowcell mapped from table <oseq_flowcell>.
type OseqFlowcell struct {
	IDOseqFlowcellTmp int32     `gorm:"column:id_oseq_flowcell_tmp;primaryKey;autoIncrement"`
	IDFlowcellLims    string    `gorm:"column:id_flowcell_lims"`
	LastUpdated       time.Time `gorm:"column:last_updated"`
	RecordedAt        time.Time `gorm:"column:recorded_at"`
	IDSampleTmp       int32     `gorm:"column:id_sample_tmp"`
	IDStudyTmp        int32     `gorm:"column:id_study_tmp"`
	ExperimentName    string    `gorm:"column:experiment_name"`
	InstrumentName    string    `gorm:"column:instrument_name"`
	InstrumentSlot    int32     `gorm:"column:instrument_slot"`
	IDLims            string    `gorm:"column:id_lims"`
	PipelineIDLims    *string   `gorm:"column:pipeline_id_lims"`
	RequestedDataType *string   `gorm:"column:requested_data_type"`
	TagIdentifier     *string   `gorm:"column:tag_identifier"`
	TagSequence       *string   `gorm:"column:tag_sequence"`
	TagSetIDLims      *string   `gorm:"column:tag_set_id_lims"`
	TagSetName        *string   `gorm:"column:tag_set_name"`
	Tag2Identifier    *string   `gorm:"column:tag2_identifier"`
	Tag2Sequence      *string   `gorm:"column:tag2_sequence"`
	Tag2SetIDLims     *string   `gorm:"column:tag2_set_id_lims"`
	Tag2SetName       *string   `gorm:"column:tag2_set_name"`
	FlowcellID        *string   `gorm:"column:flowcell_id"`
	RunID             *string   `gorm:"column:run_id"`

	Sample Sample `gorm:"foreignKey:IDSampleTmp;references:IDSampleTmp"`
	Study  Study  `gorm:"foreignKey:IDStudyTmp;references:IDStudyTmp"`
}

func (OseqFlowcell) TableName() string { return "oseq_flowcell" }

// PacBioRun mapped from table <pac_bio_run>.
type PacBioRun struct {
	IDPacBioTmp     int32     `gorm:"column:id_pac_bio_tmp;primaryKey;autoIncrement"`
	LastUpdated     time.Time `gorm:"column:last_updated"`
	RecordedAt      time.Time `gorm:"column:recorded_at"`
	IDSampleTmp     int32     `gorm:"column:id_sample_tmp"`
	IDStudyTmp      int32     `gorm:"column:id_study_tmp"`
	PacBioRunName   *string   `gorm:"column:pac_bio_run_name"`
	WellLabel       string    `gorm:"column:well_label"`
	PlateNumber     *int32    `gorm:"column:plate_number"`
	IDLims          string    `gorm:"column:id_lims"`
	IDPacBioRunLims string    `gorm:"column:id_pac_bio_run_lims"`
	TagIdentifier   *string   `gorm:"column:tag_identifier"`
	TagSequence     *string   `gorm:"column:tag_sequence"`
	TagSetIDLims    *string   `gorm:"column:tag_set_id_lims"`
	TagSetName      *string   `gorm:"column:tag_set_name"`
	Tag2Identifier  *string   `gorm:"column:tag2_identifier"`
	Tag2Sequence    *string   `gorm:"column:tag2_sequence"`
	Tag2SetIDLims   *string   `gorm:"column:tag2_set_id_lims"`
	Tag2SetName     *string   `gorm:"column:tag2_set_name"`

	Sample Sample `gorm:"foreignKey:IDSampleTmp;references:IDSampleTmp"`
	Study  Study  `gorm:"foreignKey:IDStudyTmp;references:IDStudyTmp"`
}

func (PacBioRun) TableName() string { return "pac_bio_run" }

// PacBioRunWellMetrics mapped from table <pac_bio_run_well_metrics>.
type PacBioRunWellMetrics struct {
	IDPacBioRWMetricsTmp int32      `gorm:"column:id_pac_bio_rw_metrics_tmp;primaryKey;autoIncrement"`
	LastChanged          *time.Time `gorm:"column:last_changed"`
	IDPacBioProduct      string     `gorm:"column:id_pac_bio_product"`
	PacBioRunName        string     `gorm:"column:pac_bio_run_name"`
	WellLabel            string     `gorm:"column:well_label"`
	PlateNumber          *int32     `gorm:"column:plate_number"`
}

func (PacBioRunWellMetrics) TableName() string { return "pac_bio_run_well_metrics" }

// PacBioProductMetrics mapped from table <pac_bio_product_metrics>.
type PacBioProductMetrics struct {
	IDPacBioPrMetricsTmp int32      `gorm:"column:id_pac_bio_pr_metrics_tmp;primaryKey"`
	LastChanged          *time.Time `gorm:"column:last_changed"`
	IDPacBioRWMetricsTmp int32      `gorm:"column:id_pac_bio_rw_metrics_tmp"`
	IDPacBioTmp          int32      `gorm:"column:id_pac_bio_tmp"`
	IDPacBioProduct      string     `gorm:"column:id_pac_bio_product"`
	QC                   bool       `gorm:"column:qc"`
}

func (PacBioProductMetrics) TableName() string { return "pac_bio_product_metrics" }

// SeqProductIrodsLocation mapped from table <seq_product_irods_locations>.
type SeqProductIrodsLocation struct {
	IDSeqProductIrodsLocationsTmp  int64      `gorm:"column:id_seq_product_irods_locations_tmp;primaryKey;autoIncrement"`
	Created                        *time.Time `gorm:"column:created"`
	LastChanged                    *time.Time `gorm:"column:last_changed"`
	IDProduct                      string     `gorm:"column:id_product"`
	SeqPlatformName                Platform   `gorm:"column:seq_platform_name"`
	PipelineName                   string     `gorm:"column:pipeline_name"`
	IrodsRootCollection            string     `gorm:"column:irods_root_collection"`
	IrodsDataRelativePath          *string    `gorm:"column:irods_data_relative_path"`
	IrodsSecondaryDataRelativePath *string    `gorm:"column:irods_secondary_data_relative_path"`
}

func (SeqProductIrodsLocation) TableName() string { return "seq_product_irods_locations" }
