package relay

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ignite/kiwify-relay/internal/catalog"
	"github.com/ignite/kiwify-relay/internal/config"
	"github.com/ignite/kiwify-relay/internal/kiwify"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]config.ProductConfig{
		{
			ID:                "101",
			DisplayName:       "Curso A",
			GroupClient:       "Clientes A",
			GroupCartRecovery: "Carrinho A",
			TagBought:         "comprou-a",
			TagRefund:         "reembolso-a",
			TagAbandonedCart:  "abandonou-a",
		},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func TestClassify_OrderApproved(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})
	body := []byte(`{
		"event": "order.approved",
		"data": {"customer_email": "a@x.com", "customer_name": "Ana", "product_id": "101"}
	}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got.Outcome != OutcomeApply {
		t.Fatalf("Outcome = %v, want apply", got.Outcome)
	}
	if got.EventType != kiwify.EventOrderApproved {
		t.Errorf("EventType = %q, want order.approved", got.EventType)
	}

	in := got.Intent
	if in.Email != "a@x.com" || in.Name != "Ana" {
		t.Errorf("Email/Name = %q/%q, want a@x.com/Ana", in.Email, in.Name)
	}
	if want := []GroupRef{GroupByName("Clientes A")}; !reflect.DeepEqual(in.AddGroups, want) {
		t.Errorf("AddGroups = %v, want %v", in.AddGroups, want)
	}
	if want := []GroupRef{GroupByName("Carrinho A")}; !reflect.DeepEqual(in.RemoveGroups, want) {
		t.Errorf("RemoveGroups = %v, want %v", in.RemoveGroups, want)
	}
	if want := []string{"comprou-a"}; !reflect.DeepEqual(in.AddTags, want) {
		t.Errorf("AddTags = %v, want %v", in.AddTags, want)
	}
	if want := []string{"abandonou-a", "reembolso-a"}; !reflect.DeepEqual(in.RemoveTags, want) {
		t.Errorf("RemoveTags = %v, want %v", in.RemoveTags, want)
	}
	if !in.SkipIfInGroup.IsZero() {
		t.Errorf("SkipIfInGroup = %v, want zero", in.SkipIfInGroup)
	}

	// Classification is pure: same payload, same result.
	again, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify (second call): %v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Error("classification differs across calls for identical input")
	}
}

func TestClassify_RefundLikeEvents(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})

	for _, event := range []string{"order.refunded", "order.chargeback", "order.canceled"} {
		t.Run(event, func(t *testing.T) {
			body := []byte(`{"event": "` + event + `", "data": {"customer_email": "a@x.com", "customer_name": "Ana", "product_id": "101"}}`)

			got, err := c.Classify(body, "")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got.Outcome != OutcomeApply {
				t.Fatalf("Outcome = %v, want apply", got.Outcome)
			}

			in := got.Intent
			if in.Name != "" {
				t.Errorf("Name = %q, want empty on refund-like events", in.Name)
			}
			if len(in.AddGroups) != 0 {
				t.Errorf("AddGroups = %v, want none", in.AddGroups)
			}
			if want := []GroupRef{GroupByName("Clientes A")}; !reflect.DeepEqual(in.RemoveGroups, want) {
				t.Errorf("RemoveGroups = %v, want %v", in.RemoveGroups, want)
			}
			if want := []string{"reembolso-a"}; !reflect.DeepEqual(in.AddTags, want) {
				t.Errorf("AddTags = %v, want %v", in.AddTags, want)
			}
			// Refund-like events never touch the cart-recovery side.
			for _, ref := range append(in.AddGroups, in.RemoveGroups...) {
				if ref.Name() == "Carrinho A" {
					t.Errorf("refund intent touches cart-recovery group: %v", ref)
				}
			}
		})
	}
}

func TestClassify_CheckoutAbandoned(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})
	body := []byte(`{"event": "checkout.abandoned", "data": {"email": "a@x.com", "name": "Ana", "product_id": 101}}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Outcome != OutcomeApply {
		t.Fatalf("Outcome = %v, want apply", got.Outcome)
	}

	in := got.Intent
	if in.Email != "a@x.com" || in.Name != "Ana" {
		t.Errorf("Email/Name = %q/%q (alias fields should be honored)", in.Email, in.Name)
	}
	if want := []GroupRef{GroupByName("Carrinho A")}; !reflect.DeepEqual(in.AddGroups, want) {
		t.Errorf("AddGroups = %v, want %v", in.AddGroups, want)
	}
	if want := []string{"abandonou-a"}; !reflect.DeepEqual(in.AddTags, want) {
		t.Errorf("AddTags = %v, want %v", in.AddTags, want)
	}
	if in.SkipIfInGroup != GroupByName("Clientes A") {
		t.Errorf("SkipIfInGroup = %v, want Clientes A", in.SkipIfInGroup)
	}
}

func TestClassify_NormalizesEmail(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})
	body := []byte(`{"event": "order.approved", "data": {"customer_email": "  Ana.Silva@X.COM ", "customer_name": " Ana ", "product_id": "101"}}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Intent.Email != "ana.silva@x.com" {
		t.Errorf("Email = %q, want lowercased and trimmed", got.Intent.Email)
	}
	if got.Intent.Name != "Ana" {
		t.Errorf("Name = %q, want trimmed", got.Intent.Name)
	}
}

func TestClassify_UnhandledEventType(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})
	body := []byte(`{"event": "subscription.renewed", "data": {"customer_email": "a@x.com", "product_id": "101"}}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Outcome != OutcomeIgnored {
		t.Errorf("Outcome = %v, want ignored", got.Outcome)
	}
	if got.Reason == "" {
		t.Error("expected a reason for the ignored outcome")
	}
}

func TestClassify_MalformedPayload(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})

	_, err := c.Classify([]byte("not json at all"), "")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestClassify_MissingEmail(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})
	body := []byte(`{"event": "order.approved", "data": {"product_id": "101"}}`)

	_, err := c.Classify(body, "")
	if !errors.Is(err, ErrMissingEmail) {
		t.Errorf("err = %v, want ErrMissingEmail", err)
	}
}

func TestClassify_Token(t *testing.T) {
	cat := testCatalog(t)
	body := []byte(`{"event": "order.approved", "data": {"customer_email": "a@x.com", "product_id": "101"}}`)
	bodyWithToken := []byte(`{"event": "order.approved", "token": "s3cret", "data": {"customer_email": "a@x.com", "product_id": "101"}}`)

	t.Run("header token accepted", func(t *testing.T) {
		c := NewClassifier(cat, "s3cret", config.RelayConfig{})
		if _, err := c.Classify(body, "s3cret"); err != nil {
			t.Errorf("Classify: %v", err)
		}
	})

	t.Run("body token accepted", func(t *testing.T) {
		c := NewClassifier(cat, "s3cret", config.RelayConfig{})
		if _, err := c.Classify(bodyWithToken, ""); err != nil {
			t.Errorf("Classify: %v", err)
		}
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		c := NewClassifier(cat, "s3cret", config.RelayConfig{})
		if _, err := c.Classify(body, "wrong"); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("err = %v, want ErrTokenMismatch", err)
		}
	})

	t.Run("absent token rejected", func(t *testing.T) {
		c := NewClassifier(cat, "s3cret", config.RelayConfig{})
		if _, err := c.Classify(body, ""); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("err = %v, want ErrTokenMismatch", err)
		}
	})

	t.Run("header wins over body", func(t *testing.T) {
		c := NewClassifier(cat, "s3cret", config.RelayConfig{})
		if _, err := c.Classify(bodyWithToken, "wrong"); !errors.Is(err, ErrTokenMismatch) {
			t.Errorf("err = %v, want ErrTokenMismatch when header token is wrong", err)
		}
	})

	t.Run("no secret configured skips check", func(t *testing.T) {
		c := NewClassifier(cat, "", config.RelayConfig{})
		if _, err := c.Classify(body, "anything"); err != nil {
			t.Errorf("Classify: %v", err)
		}
	})
}

func TestClassify_UnknownProductSuppressed(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})

	// Suppression applies regardless of event type.
	for _, event := range []string{"order.approved", "checkout.abandoned", "some.other.event"} {
		body := []byte(`{"event": "` + event + `", "data": {"customer_email": "a@x.com", "product_id": "999"}}`)

		got, err := c.Classify(body, "")
		if err != nil {
			t.Fatalf("Classify(%s): %v", event, err)
		}
		if got.Outcome != OutcomeSuppressed {
			t.Errorf("Outcome for %s = %v, want suppressed", event, got.Outcome)
		}
	}
}

func TestClassify_UnknownProductProcessedWithOptIn(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{ProcessUnknownProducts: true})
	body := []byte(`{"event": "order.approved", "data": {"customer_email": "a@x.com", "product_id": "999"}}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Outcome != OutcomeApply {
		t.Fatalf("Outcome = %v, want apply", got.Outcome)
	}
	if !got.Product.Fallback {
		t.Error("expected the fallback product entry")
	}
	if want := []GroupRef{GroupByName("Clientes")}; !reflect.DeepEqual(got.Intent.AddGroups, want) {
		t.Errorf("AddGroups = %v, want builtin fallback group %v", got.Intent.AddGroups, want)
	}
}

func TestClassify_NumericProductID(t *testing.T) {
	c := NewClassifier(testCatalog(t), "", config.RelayConfig{})
	body := []byte(`{"event": "order.approved", "data": {"customer_email": "a@x.com", "product_id": 101}}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Outcome != OutcomeApply {
		t.Fatalf("Outcome = %v, want apply (numeric id should match %q)", got.Outcome, "101")
	}
	if got.Product.DisplayName != "Curso A" {
		t.Errorf("Product = %q, want Curso A", got.Product.DisplayName)
	}
}

func TestClassify_SparseProductSkipsEmptyNames(t *testing.T) {
	cat, err := catalog.New([]config.ProductConfig{
		{ID: "55", DisplayName: "Mentoria", GroupClient: "Mentorados"},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	c := NewClassifier(cat, "", config.RelayConfig{})
	body := []byte(`{"event": "order.approved", "data": {"customer_email": "a@x.com", "product_id": "55"}}`)

	got, err := c.Classify(body, "")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	in := got.Intent
	if want := []GroupRef{GroupByName("Mentorados")}; !reflect.DeepEqual(in.AddGroups, want) {
		t.Errorf("AddGroups = %v, want %v", in.AddGroups, want)
	}
	if len(in.RemoveGroups) != 0 || len(in.AddTags) != 0 || len(in.RemoveTags) != 0 {
		t.Errorf("empty catalog fields must not produce steps: %+v", in)
	}
}
