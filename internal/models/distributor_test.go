package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistributorSettingsDefaultsToConfigured(t *testing.T) {
	s := DistributorSettings{DistributorArrow: false}
	assert.True(t, s.Configured(DistributorIngram))
	assert.False(t, s.Configured(DistributorArrow))
	assert.Equal(t, []Distributor{DistributorIngram, DistributorTDSynnex, DistributorMicrosoft}, s.ConfiguredDistributors())

	var empty DistributorSettings
	assert.Len(t, empty.ConfiguredDistributors(), len(Distributors))
}

func TestDistributorSettingsMergeIsPatch(t *testing.T) {
	base := DistributorSettings{DistributorArrow: false, DistributorIngram: true}
	merged := base.Merge(DistributorSettings{DistributorIngram: false})

	assert.False(t, merged[DistributorArrow])
	assert.False(t, merged[DistributorIngram])
	assert.True(t, base[DistributorIngram], "merge must not mutate the receiver")
}

func TestRequiredCredentialFields(t *testing.T) {
	assert.Equal(t, []string{"applicationId", "clientSecret", "tenantId"}, RequiredCredentialFields(DistributorMicrosoft))
	assert.Empty(t, RequiredCredentialFields("ACME"))
}
