package bdlerr_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
)

var _ = Describe("Error", func() {
	cause := errors.New("connection refused")

	It("formats context", func() {
		err := bdlerr.New(bdlerr.SearchFailure, "http://localhost/search", cause)
		Expect(err.Error()).To(Equal(
			"search failure at http://localhost/search: connection refused"))
		Expect(bdlerr.WithRow(err, 4).Error()).To(Equal(
			"search failure (row 4) at http://localhost/search: connection refused"))
	})

	It("unwraps to the cause", func() {
		err := fmt.Errorf("wrapped: %w", bdlerr.New(bdlerr.SubmissionFailure, "", cause))
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(bdlerr.KindOf(err)).To(Equal(bdlerr.SubmissionFailure))
		Expect(bdlerr.IsKind(err, bdlerr.SubmissionFailure)).To(BeTrue())
	})

	It("adds row without changing the original", func() {
		orig := bdlerr.New(bdlerr.SearchFailure, "", cause)
		_ = bdlerr.WithRow(orig, 7)
		Expect(orig.Row).To(Equal(0))
	})

	It("treats plain errors as unknown", func() {
		err := bdlerr.WithRow(cause, 2)
		Expect(bdlerr.KindOf(err)).To(Equal(bdlerr.Unknown))
		Expect(bdlerr.IsKind(nil, bdlerr.Unknown)).To(BeFalse())
		Expect(bdlerr.WithRow(nil, 2)).To(BeNil())
	})

	It("knows which kinds are row scoped", func() {
		Expect(bdlerr.SearchFailure.IsRowScoped()).To(BeTrue())
		Expect(bdlerr.SubmissionFailure.IsRowScoped()).To(BeTrue())
		Expect(bdlerr.AuthenticationFailure.IsRowScoped()).To(BeFalse())
		Expect(bdlerr.SourceFetchFailure.IsRowScoped()).To(BeFalse())
	})
})
