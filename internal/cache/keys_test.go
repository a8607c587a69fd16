package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: ServiceCatalog,
			objectType:  ObjectQuestionSet,
			identifier:  "12",
			expectedKey: "mcqcatalog:catalog:question_set:12",
		},
		{
			name:        "with empty paramsKey",
			serviceName: ServiceCatalog,
			objectType:  ObjectQuestionSet,
			identifier:  "12",
			paramsKey:   []string{},
			expectedKey: "mcqcatalog:catalog:question_set:12",
		},
		{
			name:        "with one paramsKey",
			serviceName: "catalog",
			objectType:  "subjects",
			identifier:  "list",
			paramsKey:   []string{"division1"},
			expectedKey: "mcqcatalog:catalog:subjects:list:division1",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "catalog",
			objectType:  "subjects",
			identifier:  "list",
			paramsKey:   []string{"d1", "g2", "phys"},
			expectedKey: "mcqcatalog:catalog:subjects:list:d1_g2_phys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestNamespacePrefix(t *testing.T) {
	prefix := NamespacePrefix(ServiceCatalog)
	assert.Equal(t, "mcqcatalog:catalog:", prefix)
	assert.True(t, strings.HasPrefix(GenerateCacheKey(ServiceCatalog, ObjectQuestionSet, "1"), prefix))
	assert.False(t, strings.HasPrefix(GenerateCacheKey("other", ObjectQuestionSet, "1"), prefix))
}
