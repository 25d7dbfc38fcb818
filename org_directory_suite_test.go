package main_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOrgDirectory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OrgDirectory Suite")
}
