package extraction

// RiskSummary is the synthese/anomalies/risques/recommandations/metriques document.
// Pointers and nil slices mark missing keys so zero values still validate.
type RiskSummary struct {
	Synthese        *string      `json:"synthese" validate:"required"`
	Anomalies       []string     `json:"anomalies" validate:"required"`
	Risques         []string     `json:"risques" validate:"required"`
	Recommandations []string     `json:"recommandations" validate:"required"`
	Metriques       *RiskMetrics `json:"metriques" validate:"required"`
}

// RiskMetrics holds the two scores, both percentages
type RiskMetrics struct {
	ScoreRisque      *float64 `json:"score_risque" validate:"required,gte=0,lte=100"`
	ConfianceAnalyse *float64 `json:"confiance_analyse" validate:"required,gte=0,lte=100"`
}

// AccessReview is the account-by-account review document
type AccessReview struct {
	Metadata       *ReviewMetadata   `json:"metadata" validate:"required"`
	Statistiques   *ReviewStatistics `json:"statistiques" validate:"required"`
	VerificationBD *DatabaseCheck    `json:"verification_bd" validate:"required"`
	Alertes        *ReviewAlerts     `json:"alertes" validate:"required"`
	DetailsComptes []AccountDetail   `json:"details_comptes" validate:"required,dive"`
}

type ReviewMetadata struct {
	Fichier     *string `json:"fichier" validate:"required"`
	DateAnalyse *string `json:"date_analyse" validate:"required"`
}

type ReviewStatistics struct {
	TotalComptes      *int `json:"total_comptes" validate:"required,gte=0"`
	ComptesActifs     *int `json:"comptes_actifs" validate:"required,gte=0"`
	ComptesDesactives *int `json:"comptes_desactives" validate:"required,gte=0"`
	ComptesAdmin      *int `json:"comptes_admin" validate:"required,gte=0"`
	ComptesFiliale    *int `json:"comptes_filiale" validate:"required,gte=0"`
	ComptesSupport    *int `json:"comptes_support" validate:"required,gte=0"`
}

type DatabaseCheck struct {
	ComptesPresents    *int             `json:"comptes_presents" validate:"required,gte=0"`
	ComptesAbsents     *int             `json:"comptes_absents" validate:"required,gte=0"`
	IncoherencesStatut []StatusMismatch `json:"incoherences_statut" validate:"required,dive"`
}

// StatusMismatch is an account whose file status differs from the stored one
type StatusMismatch struct {
	Prenom        *string `json:"prenom"`
	Nom           *string `json:"nom"`
	StatutFichier *string `json:"statut_fichier" validate:"required"`
	StatutBD      *string `json:"statut_bd"`
}

type ReviewAlerts struct {
	AdminDesactives          *int     `json:"admin_desactives" validate:"required,gte=0"`
	AccesSensiblesDesactives *int     `json:"acces_sensibles_desactives" validate:"required,gte=0"`
	DoublonsCUID             []string `json:"doublons_cuid" validate:"required"`
}

// AccountDetail is one reviewed account
type AccountDetail struct {
	Prenom      *string `json:"prenom"`
	Nom         *string `json:"nom"`
	IDHuawei    *string `json:"id_huawei"`
	CUID        *string `json:"cuid" validate:"required"`
	Statut      *string `json:"statut"`
	PresentEnBD *bool   `json:"present_en_bd" validate:"required"`
	StatutBD    *string `json:"statut_bd"`
}
