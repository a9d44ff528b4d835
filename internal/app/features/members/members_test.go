package members_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/lineagehub/lineagehub/internal/app/features/members"
	"github.com/lineagehub/lineagehub/internal/domain/models"
	"github.com/lineagehub/lineagehub/internal/testutil"
	"go.uber.org/zap"
)

// treeScene is the shared scaffolding: an owner, an outsider, and a tree.
type treeScene struct {
	handler  *members.Handler
	fx       *testutil.Fixtures
	owner    models.User
	outsider models.User
	tree     models.FamilyTree
}

func newScene(t *testing.T) (*treeScene, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", "password123")
	outsider := fx.CreateUser(ctx, "Outsider", "outsider@example.com", "password123")
	tree := fx.CreateTree(ctx, "Dòng họ Nguyễn", owner.ID)

	return &treeScene{
		handler:  members.NewHandler(db, nil, zap.NewNop()),
		fx:       fx,
		owner:    owner,
		outsider: outsider,
		tree:     tree,
	}, cancel
}

// validPayload returns a create payload that passes validation once a
// parent id is filled in.
func validPayload(fatherID string) map[string]any {
	return map[string]any{
		"fullName":    "Nguyễn Văn Bình",
		"gender":      "MALE",
		"hometown":    "Hà Nội",
		"ethnicity":   "Kinh",
		"nationality": "Việt Nam",
		"role":        "Trưởng nam",
		"generation":  2,
		"birthYear":   "1990",
		"fatherId":    fatherID,
		"motherId":    "none",
		"spouseId":    "none",
	}
}

func (s *treeScene) postMember(t *testing.T, as testutil.TestUser, payload map[string]any) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest("POST", "/api/family-trees/"+s.tree.ID.Hex()+"/members", payload)
	req = testutil.WithUser(req, as)
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	rec := testutil.NewRecorder()
	s.handler.HandleCreate(rec, req)
	return rec
}

func TestServeList_AccessControl(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	s.fx.CreateMember(ctx, s.tree.ID, "Cụ Tổ", models.GenderMale, 1, s.owner.ID)

	// Owner sees the tree's members.
	req := testutil.NewAuthenticatedRequest("GET", "/x", testutil.AsTestUser(s.owner))
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	rec := testutil.NewRecorder()
	s.handler.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Cụ Tổ")

	// An unrelated user is refused.
	req = testutil.NewAuthenticatedRequest("GET", "/x", testutil.AsTestUser(s.outsider))
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	rec = testutil.NewRecorder()
	s.handler.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// Anonymous is 401.
	req = testutil.NewRequest("GET", "/x")
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	rec = testutil.NewRecorder()
	s.handler.ServeList(rec, req)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleCreate_SentinelAndMalformedRelations(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	father := s.fx.CreateMemberWithBirthYear(ctx, s.tree.ID, "Cha", models.GenderMale, "1950", 1, s.owner.ID)

	payload := validPayload(father.ID.Hex())
	payload["motherId"] = "none"
	payload["spouseId"] = "not-a-hex-id" // malformed: logged and dropped, never an error
	payload["birthYear"] = ""
	payload["birthDate"] = "25-12-1990"

	rec := s.postMember(t, testutil.AsTestUser(s.owner), payload)
	rec.AssertStatus(t, http.StatusOK)

	var created models.Member
	rec.DecodeJSON(t, &created)

	if created.FatherID == nil || *created.FatherID != father.ID {
		t.Fatalf("father: got %v, want %s", created.FatherID, father.ID.Hex())
	}
	if created.MotherID != nil {
		t.Errorf("mother should be absent, got %v", created.MotherID)
	}
	if created.SpouseID != nil {
		t.Errorf("malformed spouse id should be dropped, got %v", created.SpouseID)
	}
	if created.BirthYear != "1990" {
		t.Errorf("birth year should be derived from the date, got %q", created.BirthYear)
	}
	if created.CreatedByID != s.owner.ID || created.UpdatedByID != s.owner.ID {
		t.Errorf("creator/updater not stamped: %+v", created)
	}

	// Father's children set picked up the new member.
	gotFather := s.fx.GetMember(ctx, father.ID)
	if len(gotFather.ChildrenIDs) != 1 || gotFather.ChildrenIDs[0] != created.ID {
		t.Errorf("father children: got %v, want [%s]", gotFather.ChildrenIDs, created.ID.Hex())
	}
}

func TestHandleCreate_AccumulatesViolations(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()

	rec := s.postMember(t, testutil.AsTestUser(s.owner), map[string]any{
		"fullName": "",
		"gender":   "UNKNOWN",
	})
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	var body struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
	}
	rec.DecodeJSON(t, &body)
	if body.Error != "validation_failed" {
		t.Errorf("error category: got %q", body.Error)
	}
	if len(body.Violations) < 5 {
		t.Errorf("expected the full accumulated list, got %v", body.Violations)
	}
}

func TestHandleCreate_ParentAgeGapBothParents(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	mother := s.fx.CreateMemberWithBirthYear(ctx, s.tree.ID, "Mẹ", models.GenderFemale, "1990", 1, s.owner.ID)

	payload := validPayload("none")
	payload["motherId"] = mother.ID.Hex()
	payload["birthYear"] = "2000" // only 10 years after the mother

	rec := s.postMember(t, testutil.AsTestUser(s.owner), payload)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, "16")
}

func TestHandleCreate_SpouseBackLinkIsConditional(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	father := s.fx.CreateMemberWithBirthYear(ctx, s.tree.ID, "Cha", models.GenderMale, "1950", 1, s.owner.ID)
	wife := s.fx.CreateMember(ctx, s.tree.ID, "Vợ", models.GenderFemale, 2, s.owner.ID)

	// First husband: back-link lands.
	first := validPayload(father.ID.Hex())
	first["spouseId"] = wife.ID.Hex()
	rec := s.postMember(t, testutil.AsTestUser(s.owner), first)
	rec.AssertStatus(t, http.StatusOK)
	var husband models.Member
	rec.DecodeJSON(t, &husband)

	gotWife := s.fx.GetMember(ctx, wife.ID)
	if gotWife.SpouseID == nil || *gotWife.SpouseID != husband.ID {
		t.Fatalf("expected wife's spouse back-link to %s, got %v", husband.ID.Hex(), gotWife.SpouseID)
	}

	// Second claim on the same spouse: the existing link must survive.
	second := validPayload(father.ID.Hex())
	second["fullName"] = "Người Đến Sau"
	second["spouseId"] = wife.ID.Hex()
	rec = s.postMember(t, testutil.AsTestUser(s.owner), second)
	rec.AssertStatus(t, http.StatusOK)

	gotWife = s.fx.GetMember(ctx, wife.ID)
	if gotWife.SpouseID == nil || *gotWife.SpouseID != husband.ID {
		t.Errorf("existing spouse link was overwritten: got %v", gotWife.SpouseID)
	}
}

func TestHandleUpdate_ReassignsParents(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	father1 := s.fx.CreateMemberWithBirthYear(ctx, s.tree.ID, "Cha Một", models.GenderMale, "1950", 1, s.owner.ID)
	father2 := s.fx.CreateMemberWithBirthYear(ctx, s.tree.ID, "Cha Hai", models.GenderMale, "1948", 1, s.owner.ID)

	rec := s.postMember(t, testutil.AsTestUser(s.owner), validPayload(father1.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	var child models.Member
	rec.DecodeJSON(t, &child)

	update := validPayload(father2.ID.Hex())
	req := testutil.NewJSONRequest("PUT", "/x", update)
	req = testutil.WithUser(req, testutil.AsTestUser(s.owner))
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	req = testutil.WithChiURLParam(req, "memberID", child.ID.Hex())
	urec := testutil.NewRecorder()
	s.handler.HandleUpdate(urec, req)
	urec.AssertStatus(t, http.StatusOK)

	got1 := s.fx.GetMember(ctx, father1.ID)
	for _, id := range got1.ChildrenIDs {
		if id == child.ID {
			t.Error("old father still lists the child")
		}
	}
	got2 := s.fx.GetMember(ctx, father2.ID)
	found := false
	for _, id := range got2.ChildrenIDs {
		if id == child.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("new father missing the child: %v", got2.ChildrenIDs)
	}

	// Creator stamp survives the update; updater is re-stamped.
	gotChild := s.fx.GetMember(ctx, child.ID)
	if gotChild.CreatedByID != s.owner.ID {
		t.Errorf("created_by changed: %s", gotChild.CreatedByID.Hex())
	}
}

func TestHandleDelete_ClearsReferences(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	grandpa := s.fx.CreateMemberWithBirthYear(ctx, s.tree.ID, "Ông", models.GenderMale, "1920", 1, s.owner.ID)
	wife := s.fx.CreateMember(ctx, s.tree.ID, "Vợ", models.GenderFemale, 2, s.owner.ID)

	// Husband links to the wife; child links to the husband.
	hp := validPayload(grandpa.ID.Hex())
	hp["spouseId"] = wife.ID.Hex()
	rec := s.postMember(t, testutil.AsTestUser(s.owner), hp)
	rec.AssertStatus(t, http.StatusOK)
	var husband models.Member
	rec.DecodeJSON(t, &husband)

	cp := validPayload(husband.ID.Hex())
	cp["fullName"] = "Con"
	cp["generation"] = 3
	cp["birthYear"] = "2010"
	rec = s.postMember(t, testutil.AsTestUser(s.owner), cp)
	rec.AssertStatus(t, http.StatusOK)
	var child models.Member
	rec.DecodeJSON(t, &child)

	del := func() *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest("DELETE", "/x", testutil.AsTestUser(s.owner))
		req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
		req = testutil.WithChiURLParam(req, "memberID", husband.ID.Hex())
		rec := testutil.NewRecorder()
		s.handler.HandleDelete(rec, req)
		return rec
	}

	del().AssertStatus(t, http.StatusOK)

	gotWife := s.fx.GetMember(ctx, wife.ID)
	if gotWife.SpouseID != nil {
		t.Errorf("wife's spouse link not cleared: %v", gotWife.SpouseID)
	}
	gotChild := s.fx.GetMember(ctx, child.ID)
	if gotChild.FatherID != nil {
		t.Errorf("child's father link not cleared: %v", gotChild.FatherID)
	}
	gotGrandpa := s.fx.GetMember(ctx, grandpa.ID)
	for _, id := range gotGrandpa.ChildrenIDs {
		if id == husband.ID {
			t.Error("grandfather still lists the deleted member")
		}
	}

	// Deleting again is a 404.
	del().AssertStatus(t, http.StatusNotFound)
}

func TestServeEligibleSpouses(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	me := s.fx.CreateMember(ctx, s.tree.ID, "Tôi", models.GenderMale, 2, s.owner.ID)
	peer := s.fx.CreateMember(ctx, s.tree.ID, "Bạn Đời", models.GenderFemale, 2, s.owner.ID)
	s.fx.CreateMember(ctx, s.tree.ID, "Thế Hệ Khác", models.GenderFemale, 3, s.owner.ID)

	get := func(query string) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest("GET", "/x"+query, testutil.AsTestUser(s.owner))
		req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
		req = testutil.WithChiURLParam(req, "memberID", me.ID.Hex())
		rec := testutil.NewRecorder()
		s.handler.ServeEligibleSpouses(rec, req)
		return rec
	}

	rec := get("")
	rec.AssertStatus(t, http.StatusOK)
	var got []models.Member
	rec.DecodeJSON(t, &got)
	if len(got) != 1 || got[0].ID != peer.ID {
		t.Errorf("expected only the same-generation peer, got %v", got)
	}

	// Generation override pulls the other cohort.
	rec = get("?generation=3")
	rec.AssertStatus(t, http.StatusOK)
	got = nil
	rec.DecodeJSON(t, &got)
	if len(got) != 1 || got[0].Generation != 3 {
		t.Errorf("expected the generation-3 member, got %v", got)
	}
}

func TestHandleUploadPortrait_RejectsBadInput(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()

	buildUpload := func(field, filename, contentType string, size int) *http.Request {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(bytes.Repeat([]byte("x"), size)); err != nil {
			t.Fatalf("write part: %v", err)
		}
		mw.Close()

		req := httptest.NewRequest("POST", "/api/uploads/members", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	// Anonymous is refused before any parsing.
	anon := buildUpload("file", "a.png", "image/png", 16)
	rec := testutil.NewRecorder()
	s.handler.HandleUploadPortrait(rec, anon)
	rec.AssertStatus(t, http.StatusUnauthorized)

	// Non-image content type.
	req := testutil.WithUser(buildUpload("file", "a.txt", "text/plain", 16), testutil.AsTestUser(s.owner))
	rec = testutil.NewRecorder()
	s.handler.HandleUploadPortrait(rec, req)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	// Oversize payload.
	req = testutil.WithUser(buildUpload("file", "big.png", "image/png", 6<<20), testutil.AsTestUser(s.owner))
	rec = testutil.NewRecorder()
	s.handler.HandleUploadPortrait(rec, req)
	rec.AssertStatus(t, http.StatusRequestEntityTooLarge)

	// Missing file field.
	req = testutil.WithUser(buildUpload("other", "a.png", "image/png", 16), testutil.AsTestUser(s.owner))
	rec = testutil.NewRecorder()
	s.handler.HandleUploadPortrait(rec, req)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestServeExportCSV(t *testing.T) {
	s, cancel := newScene(t)
	defer cancel()
	ctx, cancel2 := testutil.TestContext()
	defer cancel2()

	s.fx.CreateMember(ctx, s.tree.ID, "Cụ Tổ", models.GenderMale, 1, s.owner.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/x/export", testutil.AsTestUser(s.owner))
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	rec := testutil.NewRecorder()
	s.handler.ServeExportCSV(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Full Name")
	rec.AssertContains(t, "Cụ Tổ")

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	// Outsiders cannot export.
	req = testutil.NewAuthenticatedRequest("GET", "/x/export", testutil.AsTestUser(s.outsider))
	req = testutil.WithChiURLParam(req, "treeID", s.tree.ID.Hex())
	rec = testutil.NewRecorder()
	s.handler.ServeExportCSV(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}
