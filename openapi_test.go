package main_test

import (
	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())

		Expect(doc.Validate(loader.Context)).To(Succeed())
	})

	It("documents the auth flow", func() {
		for _, path := range []string{
			"/auth/register",
			"/auth/login",
			"/auth/refresh",
			"/auth/activation/confirm",
			"/auth/forgot-password",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), path)
		}
	})

	It("documents the directory resources", func() {
		for _, path := range []string{
			"/users",
			"/users/detailed",
			"/users/{id}",
			"/departments",
			"/departments/{id}/users",
			"/departments/{id}/descendants",
			"/hierarchy",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), path)
		}
	})

	It("secures every non-auth mutation with the bearer scheme", func() {
		scheme := doc.Components.SecuritySchemes["bearerAuth"]
		Expect(scheme).NotTo(BeNil())
		Expect(scheme.Value.Scheme).To(Equal("bearer"))
	})
})
