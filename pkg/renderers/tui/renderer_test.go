package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	defaults     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.defaults = append(s.defaults, cfg.Default)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRender_StringAndSelect(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"hello"},
		selectIdx: []int{1},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.FormModel{
		ID: "post",
		Fields: []model.Field{
			{ID: "title", Type: model.FieldTypeText, Label: "Title"},
			{ID: "status", Type: model.FieldTypeSelect, Label: "Status", ArrayData: model.StaticOptions{{Value: "draft", Title: "Draft"}, {Value: "published", Title: "Published"}}},
		},
	}

	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "{\n  \"status\": \"published\",\n  \"title\": \"hello\"\n}"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != 1 || driver.selectPos != 1 {
		t.Fatalf("prompts not consumed as expected")
	}
}

func TestRender_NumberValidationReprompts(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"-1", "10"},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.FormModel{
		Fields: []model.Field{
			{
				ID:    "count",
				Type:  model.FieldTypeInputNumber,
				Label: "Count",
				Rules: []model.ValidationRule{
					{Kind: model.ValidationRuleRequired},
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "0"}},
				},
			},
		},
	}

	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "count=10" {
		t.Fatalf("unexpected payload %q", out)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "must be at least 0") {
		t.Fatalf("expected one validation message, got %v", driver.infoMessages)
	}
}

func TestCollect_HiddenAndReadonlyFields(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Ada"}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.FormModel{
		Fields: []model.Field{
			{ID: "id", Type: model.FieldTypeText, Hide: true},
			{ID: "note", Type: model.FieldTypePlainText, Label: "Note", DefaultValue: "read only"},
			{ID: "name", Type: model.FieldTypeText, Label: "Name"},
		},
	}

	values, err := r.Collect(context.Background(), form, render.RenderOptions{
		Source: binding.Source{Mode: model.ModeEdit, Initial: map[string]any{"id": "7", "name": "Grace"}},
		Alert:  "Name already taken",
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if diff := cmp.Diff(map[string]any{"id": "7", "name": "Ada"}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Grace"}, driver.defaults); diff != "" {
		t.Fatalf("prompt defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Name already taken", "Note: read only"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SubmitTransformsAndCrossFieldRules(t *testing.T) {
	driver := &stubDriver{passwords: []string{"secret1", "secret2", "secret1"}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	upper := func(value any, _ []model.Field, _ map[string]any) any {
		return strings.ToUpper(binding.Stringify(value))
	}
	form := model.FormModel{
		Fields: []model.Field{
			{ID: "pass", Type: model.FieldTypePassword, Submit: upper},
			{ID: "confirm", Type: model.FieldTypePassword, Rules: []model.ValidationRule{
				{Kind: model.ValidationRuleCustom, Params: map[string]string{"name": "equalTo", "field": "pass"}},
			}},
		},
	}

	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "{\n  \"confirm\": \"secret1\",\n  \"pass\": \"SECRET1\"\n}"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_TreeFieldsAndCheckbox(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{1, 2}, confirm: []bool{true}, multiIdx: [][]int{{0, 1}}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	tree := model.StaticTree{
		{Value: "eu", Label: "Europe", Children: []model.TreeNode{
			{Value: "fr", Label: "France"},
			{Value: "de", Label: "Germany"},
		}},
	}
	form := model.FormModel{
		Fields: []model.Field{
			{ID: "region", Type: model.FieldTypeCascader, ArrayData: tree},
			{ID: "node", Type: model.FieldTypeTreeSelect, ArrayData: tree},
			{ID: "agree", Type: model.FieldTypeCheckbox},
			{ID: "tags", Type: model.FieldTypeMultiSelect, ArrayData: model.StaticOptions{{Value: "a", Title: "A"}, {Value: "b", Title: "B"}}},
		},
	}

	values, err := r.Collect(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]any{
		"region": []string{"eu", "de"},
		"node":   "de",
		"agree":  true,
		"tags":   []string{"a", "b"},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PrettyAndYAML(t *testing.T) {
	form := model.FormModel{
		Fields: []model.Field{{ID: "name", Type: model.FieldTypeText, Label: "Name"}},
	}

	r, _ := New(WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithOutputFormat(OutputFormatPrettyText))
	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render pretty: %v", err)
	}
	if string(out) != "Name: Ada\n" {
		t.Fatalf("unexpected pretty output %q", out)
	}

	r, _ = New(WithPromptDriver(&stubDriver{inputs: []string{"Ada"}}), WithOutputFormat(OutputFormatYAML))
	out, err = r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render yaml: %v", err)
	}
	if string(out) != "name: Ada\n" {
		t.Fatalf("unexpected yaml output %q", out)
	}
	if r.ContentType() != "application/yaml" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestCollect_AbortPropagates(t *testing.T) {
	r, _ := New(WithPromptDriver(&stubDriver{}))
	form := model.FormModel{Fields: []model.Field{{ID: "name", Type: model.FieldTypeText}}}
	if _, err := r.Collect(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error to propagate")
	}
}
