package models

import "time"

// Prediction is a logged estimate served through the API
type Prediction struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Category          string    `gorm:"size:16;not null" json:"category"`
	Subtype           string    `gorm:"size:32;not null" json:"subtype"`
	PostalCode        int       `gorm:"index;not null" json:"postal_code"`
	District          int       `json:"district"`
	Province          string    `gorm:"size:32" json:"province"`
	LivingArea        float64   `json:"living_area"`
	PlotSurface       float64   `json:"plot_surface"`
	BuildingCondition int       `json:"building_condition"`
	SwimmingPool      bool      `json:"swimming_pool"`
	Price             float64   `json:"price"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

// Metrics holds the regression quality figures for one data split
type Metrics struct {
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
}

// TrainingRun records one execution of the training driver
type TrainingRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CorpusRows int       `json:"corpus_rows"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
	Features   int       `json:"features"`
	Train      Metrics   `gorm:"embedded;embeddedPrefix:train_" json:"train"`
	Test       Metrics   `gorm:"embedded;embeddedPrefix:test_" json:"test"`
	ScalerPath string    `json:"scaler_path"`
	ModelPath  string    `json:"model_path"`
	CreatedAt  time.Time `json:"created_at"`
}
